package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hacash/node/cmd/utils"
	"github.com/hacash/node/common/constants"
	"github.com/hacash/node/log"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "creates the default config file",
	Long: `creates the default config file in the location specified by the --config-dir flag.
The default config file will contain all the default values for the flags.
Any flags passed in the command line here will also overwrite the default values in the config file.`,
	RunE:                       runConfig,
	SilenceUsage:               true,
	SuggestionsMinimumDistance: 2,
	Example:                    `hacash config --db-engine=pebble`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	for _, flagGroup := range utils.Flags {
		for _, flag := range flagGroup {
			utils.CreateAndBindFlag(flag, configCmd)
		}
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	configDir := filepath.Clean(cmd.Flag(utils.ConfigDirFlag.Name).Value.String())
	path := filepath.Join(configDir, constants.CONFIG_FILE_NAME)
	if _, err := os.Stat(path); err == nil {
		log.Global.WithField("path", path).Fatal("Cannot init config file. File already exists. Either remove this option to run with the existing config file, or delete the existing config file to re-initialize a new one.")
	} else if !os.IsNotExist(err) {
		log.Global.Fatalf("Error accessing config directory: %s, Error: %v", configDir, err)
	}
	if err := utils.WriteDefaultConfigFile(configDir, constants.CONFIG_FILE_NAME); err != nil {
		return err
	}
	log.Global.WithField("path", path).Info("Initialized new config file.")
	return nil
}
