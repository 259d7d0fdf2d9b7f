package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/hacash/node/common/constants"
	"github.com/hacash/node/log"
)

// InitConfig initializes the viper config instance ensuring that environment variables
// take precedence over config file parameters.
// Environment variables should be prefixed with the application name (e.g. HACASH_LOG_LEVEL).
// It panics if an error occurs while reading the config file.
func InitConfig() {
	// read in config file and merge with defaults
	log.Global.Infof("Loading config from file: %s", viper.ConfigFileUsed())
	err := viper.ReadInConfig()
	if err != nil {
		// if error is type ConfigFileNotFoundError or fs.PathError, ignore error
		if _, ok := err.(*fs.PathError); ok || errors.Is(err, viper.ConfigFileNotFoundError{}) {
			log.Global.Warnf("Config file not found: %s", viper.ConfigFileUsed())
		} else {
			log.Global.Errorf("Error reading config file: %s", err)
			// config file was found but another error was produced. Cannot continue
			panic(err)
		}
	}

	log.Global.Infof("Loading config from environment variables with prefix: '%s_'", constants.ENV_PREFIX)
	viper.SetEnvPrefix(constants.ENV_PREFIX)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// SaveConfig writes the current config parameters to the config file.
//
// An existing config file is kept as a backup copy ending with .bak.
func SaveConfig() error {
	configFile := viper.ConfigFileUsed()
	log.Global.Debugf("saving/updating config file: %s", configFile)
	if _, err := os.Stat(configFile); err == nil {
		if err := os.Rename(configFile, configFile+".bak"); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	return writeSettings(configFile, viper.AllSettings())
}

// WriteDefaultConfigFile writes the defaults of every flag, overlaid with
// the values already set, to dir/name.
func WriteDefaultConfigFile(dir string, name string) error {
	settings := viper.AllSettings()
	for _, group := range append([][]Flag{GlobalFlags}, Flags...) {
		for _, flag := range group {
			if _, ok := settings[flag.Name]; !ok {
				settings[flag.Name] = flag.Value
			}
		}
	}
	// the location of the file itself does not belong in it
	delete(settings, ConfigDirFlag.Name)
	delete(settings, SaveConfigFlag.Name)
	return writeSettings(filepath.Join(dir, name), settings)
}

func writeSettings(path string, settings map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
