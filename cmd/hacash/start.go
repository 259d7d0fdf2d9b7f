package main

import (
	"github.com/spf13/cobra"

	"github.com/hacash/node/cmd/utils"
	"github.com/hacash/node/common/exiter"
	"github.com/hacash/node/log"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "starts a hacash full node",
	Long: `starts the hacash daemon. The daemon opens the chain databases, syncs blocks with the
p2p network and serves the json api. Peers are dialed from --boot-nodes and from the
stable.nodes file of the data dir.`,
	RunE:                       runStart,
	SilenceUsage:               true,
	SuggestionsMinimumDistance: 2,
	Example:                    `hacash start --log-level=debug --miner-enable --miner-reward=<address>`,
}

func init() {
	rootCmd.AddCommand(startCmd)

	// Create and bind all node flags to the start command
	for _, group := range utils.Flags {
		for _, flag := range group {
			utils.CreateAndBindFlag(flag, startCmd)
		}
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	log.Global.Info("Starting hacash")
	ex := exiter.New()
	backend, err := utils.StartHacashBackend(ex, log.Global)
	if err != nil {
		ex.Exit()
		ex.Wait()
		log.Global.WithField("error", err).Fatal("error starting node")
	}

	// wait for a SIGINT or SIGTERM signal
	ex.ListenSignal(log.Global)
	ex.Wait()
	log.Global.Warn("Received 'stop' signal, shutting down gracefully...")
	backend.Close()
	log.Global.Warn("Node is offline")
	return nil
}
