package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hacash/node/common/constants"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/log"
	"github.com/hacash/node/params"
)

var GlobalFlags = []Flag{
	ConfigDirFlag,
	DataDirFlag,
	LogLevelFlag,
	SaveConfigFlag,
}

var NodeFlags = []Flag{
	P2PAddrFlag,
	BootNodesFlag,
	MaxPeersFlag,
}

var EngineFlags = []Flag{
	DBEngineFlag,
	DBCacheFlag,
	ChainIDFlag,
	UnstableBlockFlag,
	FastSyncFlag,
	SyncMaxHeightFlag,
	DiamondFormFlag,
	RecentBlocksFlag,
	AverageFeePurityFlag,
	LowestFeeFlag,
	TxPoolMaxsFlag,
	PowModeFlag,
}

var MinerFlags = []Flag{
	MinerEnableFlag,
	MinerRewardFlag,
	MinerMessageFlag,
	MinerThreadsFlag,
}

var APIFlags = []Flag{
	HTTPAddrFlag,
	HTTPCorsFlag,
	HTTPRateFlag,
}

var MetricsFlags = []Flag{
	MetricsEnabledFlag,
	MetricsAddrFlag,
}

// Flags holds every flag group, for the commands that write the config file.
var Flags = [][]Flag{
	NodeFlags,
	EngineFlags,
	MinerFlags,
	APIFlags,
	MetricsFlags,
}

var (
	// ****************************************
	// **                                    **
	// **         GLOBAL FLAGS               **
	// **                                    **
	// ****************************************
	ConfigDirFlag = Flag{
		Name:         "config-dir",
		Abbreviation: "c",
		Value:        xdg.ConfigHome + "/" + constants.APP_NAME + "/",
		Usage:        "config directory" + generateEnvDoc("config-dir"),
	}

	DataDirFlag = Flag{
		Name:         "data-dir",
		Abbreviation: "d",
		Value:        xdg.DataHome + "/" + constants.APP_NAME + "/",
		Usage:        "data directory" + generateEnvDoc("data-dir"),
	}

	LogLevelFlag = Flag{
		Name:         "log-level",
		Abbreviation: "l",
		Value:        "info",
		Usage:        "log level (trace, debug, info, warn, error, fatal, panic)" + generateEnvDoc("log-level"),
	}

	SaveConfigFlag = Flag{
		Name:         "save-config",
		Abbreviation: "S",
		Value:        false,
		Usage:        "save/update config file with current config parameters" + generateEnvDoc("save-config"),
	}

	// ****************************************
	// **                                    **
	// **         NODE FLAGS                 **
	// **                                    **
	// ****************************************
	P2PAddrFlag = Flag{
		Name:         "p2p-addr",
		Abbreviation: "p",
		Value:        "0.0.0.0:3337",
		Usage:        "tcp address the p2p listener binds" + generateEnvDoc("p2p-addr"),
	}

	BootNodesFlag = Flag{
		Name:  "boot-nodes",
		Value: []string{},
		Usage: "peers dialed on start. Syntax: <ip:port>,<ip:port>,..." + generateEnvDoc("boot-nodes"),
	}

	MaxPeersFlag = Flag{
		Name:  "max-peers",
		Value: 50,
		Usage: "maximum number of stable nodes remembered across restarts" + generateEnvDoc("max-peers"),
	}

	// ****************************************
	// **                                    **
	// **         ENGINE FLAGS               **
	// **                                    **
	// ****************************************
	DBEngineFlag = Flag{
		Name:  "db-engine",
		Value: rawdb.EngineLevelDB,
		Usage: "database backend (leveldb, pebble, memory)" + generateEnvDoc("db-engine"),
	}

	DBCacheFlag = Flag{
		Name:  "db-cache",
		Value: 64,
		Usage: "megabytes of memory shared by the database caches" + generateEnvDoc("db-cache"),
	}

	ChainIDFlag = Flag{
		Name:  "chain-id",
		Value: uint64(0),
		Usage: "sub chain id, 0 is mainnet" + generateEnvDoc("chain-id"),
	}

	UnstableBlockFlag = Flag{
		Name:  "unstable-block",
		Value: params.DefaultEngineConfig.UnstableBlock,
		Usage: "depth of blocks that may still be replaced by a fork" + generateEnvDoc("unstable-block"),
	}

	FastSyncFlag = Flag{
		Name:  "fast-sync",
		Value: false,
		Usage: "skip the pow and signature checks of synced blocks" + generateEnvDoc("fast-sync"),
	}

	SyncMaxHeightFlag = Flag{
		Name:  "sync-max-height",
		Value: uint64(0),
		Usage: "refuse blocks above this height, 0 means no limit" + generateEnvDoc("sync-max-height"),
	}

	DiamondFormFlag = Flag{
		Name:  "diamond-form",
		Value: params.DefaultEngineConfig.DiamondForm,
		Usage: "keep the per address diamond ownership index" + generateEnvDoc("diamond-form"),
	}

	RecentBlocksFlag = Flag{
		Name:  "recent-blocks",
		Value: true,
		Usage: "keep summaries of the latest blocks for the api" + generateEnvDoc("recent-blocks"),
	}

	AverageFeePurityFlag = Flag{
		Name:  "average-fee-purity",
		Value: true,
		Usage: "track the average fee purity of recent blocks" + generateEnvDoc("average-fee-purity"),
	}

	LowestFeeFlag = Flag{
		Name:  "lowest-fee",
		Value: uint64(params.DefaultLowestFeePurity),
		Usage: "lowest fee purity accepted into the txpool" + generateEnvDoc("lowest-fee"),
	}

	TxPoolMaxsFlag = Flag{
		Name:  "txpool-maxs",
		Value: []string{"5000", "100"},
		Usage: "txpool group capacities. Syntax: <normal>,<diamint>" + generateEnvDoc("txpool-maxs"),
	}

	PowModeFlag = Flag{
		Name:  "pow-mode",
		Value: "normal",
		Usage: "pow verification (normal, fake)" + generateEnvDoc("pow-mode"),
	}

	// ****************************************
	// **                                    **
	// **         MINER FLAGS                **
	// **                                    **
	// ****************************************
	MinerEnableFlag = Flag{
		Name:  "miner-enable",
		Value: false,
		Usage: "mine blocks with the local cpu" + generateEnvDoc("miner-enable"),
	}

	MinerRewardFlag = Flag{
		Name:  "miner-reward",
		Value: "",
		Usage: "address receiving the coinbase reward" + generateEnvDoc("miner-reward"),
	}

	MinerMessageFlag = Flag{
		Name:  "miner-message",
		Value: "",
		Usage: "coinbase message, up to 16 bytes" + generateEnvDoc("miner-message"),
	}

	MinerThreadsFlag = Flag{
		Name:  "miner-threads",
		Value: 0,
		Usage: "mining threads, 0 uses every core" + generateEnvDoc("miner-threads"),
	}

	// ****************************************
	// **                                    **
	// **         API FLAGS                  **
	// **                                    **
	// ****************************************
	HTTPAddrFlag = Flag{
		Name:  "http-addr",
		Value: "127.0.0.1:8081",
		Usage: "address of the json api server, empty disables it" + generateEnvDoc("http-addr"),
	}

	HTTPCorsFlag = Flag{
		Name:  "http-cors",
		Value: []string{"*"},
		Usage: "origins allowed by the api server" + generateEnvDoc("http-cors"),
	}

	HTTPRateFlag = Flag{
		Name:  "http-rate",
		Value: 20,
		Usage: "submit requests per second accepted by the api, 0 disables limiting" + generateEnvDoc("http-rate"),
	}

	// ****************************************
	// **                                    **
	// **         METRICS FLAGS              **
	// **                                    **
	// ****************************************
	MetricsEnabledFlag = Flag{
		Name:  "metrics",
		Value: false,
		Usage: "serve prometheus metrics" + generateEnvDoc("metrics"),
	}

	MetricsAddrFlag = Flag{
		Name:  "metrics-addr",
		Value: "127.0.0.1:9100",
		Usage: "address of the metrics endpoint" + generateEnvDoc("metrics-addr"),
	}
)

func CreateAndBindFlag(flag Flag, cmd *cobra.Command) {
	switch val := flag.Value.(type) {
	case string:
		cmd.PersistentFlags().StringP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case bool:
		cmd.PersistentFlags().BoolP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case []string:
		cmd.PersistentFlags().StringSliceP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case time.Duration:
		cmd.PersistentFlags().DurationP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case int:
		cmd.PersistentFlags().IntP(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case int64:
		cmd.PersistentFlags().Int64P(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	case uint64:
		cmd.PersistentFlags().Uint64P(flag.GetName(), flag.GetAbbreviation(), val, flag.GetUsage())
	default:
		log.Global.Error("Flag type not supported: " + flag.GetName() + ", " + fmt.Sprintf("%T", val))
	}
	viper.BindPFlag(flag.GetName(), cmd.PersistentFlags().Lookup(flag.GetName()))
}

// helper function that given a cobra flag name, returns the corresponding
// help legend for the equivalent environment variable
func generateEnvDoc(flag string) string {
	envVar := constants.ENV_PREFIX + "_" + strings.ReplaceAll(strings.ToUpper(flag), "-", "_")
	return fmt.Sprintf(" [%s]", envVar)
}
