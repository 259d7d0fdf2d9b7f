package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hacash/node/common"
	"github.com/hacash/node/common/constants"
	"github.com/hacash/node/common/exiter"
	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core"
	"github.com/hacash/node/core/actions"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/txpool"
	"github.com/hacash/node/core/vm"
	"github.com/hacash/node/internal/hacashapi"
	"github.com/hacash/node/log"
	"github.com/hacash/node/metrics_config"
	"github.com/hacash/node/p2p/protocol"
	"github.com/hacash/node/params"
)

// HacashBackend is a running node: the chain engine with its pool, the
// optional miner, the p2p handler and the api server.
type HacashBackend struct {
	ID      string
	Engine  *core.Engine
	Pool    *txpool.TxPool
	Miner   *core.Miner // nil unless mining
	Handler *protocol.Handler
	Peers   *protocol.Peers
	API     *hacashapi.Server // nil when the api is disabled

	dbs     *rawdb.Databases
	dataDir string
	logger  *log.Logger
}

// EngineConfigFromViper reads the engine knobs from the bound flags.
func EngineConfigFromViper() (params.EngineConfig, error) {
	cnf := params.DefaultEngineConfig
	cnf.DataDir = viper.GetString(DataDirFlag.Name)
	cnf.ChainID = uint32(viper.GetUint64(ChainIDFlag.Name))
	cnf.UnstableBlock = viper.GetUint64(UnstableBlockFlag.Name)
	cnf.FastSync = viper.GetBool(FastSyncFlag.Name)
	cnf.SyncMaxHeight = viper.GetUint64(SyncMaxHeightFlag.Name)
	cnf.DiamondForm = viper.GetBool(DiamondFormFlag.Name)
	cnf.RecentBlocks = viper.GetBool(RecentBlocksFlag.Name)
	cnf.AverageFeePurity = viper.GetBool(AverageFeePurityFlag.Name)
	cnf.LowestFeePurity = viper.GetUint64(LowestFeeFlag.Name)
	cnf.MinerEnable = viper.GetBool(MinerEnableFlag.Name)

	maxs := viper.GetStringSlice(TxPoolMaxsFlag.Name)
	cnf.TxPoolMaxs = make([]int, 0, len(maxs))
	for _, s := range maxs {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return cnf, errors.Wrapf(err, "%s value %q", TxPoolMaxsFlag.Name, s)
		}
		cnf.TxPoolMaxs = append(cnf.TxPoolMaxs, n)
	}

	if reward := viper.GetString(MinerRewardFlag.Name); reward != "" {
		addr, err := common.ParseAddress(reward)
		if err != nil {
			return cnf, errors.Wrapf(err, "%s value %q", MinerRewardFlag.Name, reward)
		}
		cnf.MinerRewardAddress = addr
	}
	msg := viper.GetString(MinerMessageFlag.Name)
	if len(msg) > len(cnf.MinerMessage) {
		return cnf, errors.Errorf("%s cannot be longer than %d bytes", MinerMessageFlag.Name, len(cnf.MinerMessage))
	}
	copy(cnf.MinerMessage[:], msg)
	if cnf.MinerEnable && cnf.MinerRewardAddress == (common.Address{}) {
		return cnf, core.ErrNoMinerAddress
	}
	return cnf, nil
}

// MintConfigFromViper reads the minter settings from the bound flags.
func MintConfigFromViper() params.MintConfig {
	cnf := params.DefaultMintConfig
	cnf.ChainID = viper.GetUint64(ChainIDFlag.Name)
	cnf.SyncMaxHeight = viper.GetUint64(SyncMaxHeightFlag.Name)
	return cnf
}

// LoadNodeID reads the node identity from dataDir, creating it with 16 random
// bytes on first launch.
func LoadNodeID(dataDir string) (string, error) {
	path := filepath.Join(dataDir, constants.NODE_ID_FILE_NAME)
	if data, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(data))
		if raw, err := hex.DecodeString(id); err == nil && len(raw) == 16 {
			return id, nil
		}
		log.Global.WithField("path", path).Warn("Malformed node id, creating a new one")
	} else if !os.IsNotExist(err) {
		return "", err
	}
	var raw [16]byte
	if _, err := io.ReadFull(rand.Reader, raw[:]); err != nil {
		return "", err
	}
	id := hex.EncodeToString(raw[:])
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return id, os.WriteFile(path, []byte(id), 0644)
}

// StartHacashBackend opens the data dir and starts every component of the
// node as a job of ex.
func StartHacashBackend(ex *exiter.Exiter, logger *log.Logger) (*HacashBackend, error) {
	if logger == nil {
		logger = log.Global
	}
	cnf, err := EngineConfigFromViper()
	if err != nil {
		return nil, err
	}
	id, err := LoadNodeID(cnf.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "load node id")
	}
	logger.WithFields(log.Fields{"id": id, "datadir": cnf.DataDir, "chain": cnf.ChainID}).Info("Starting hacash node")

	dbs, err := rawdb.OpenDatabases(viper.GetString(DBEngineFlag.Name), cnf.DataDir, viper.GetInt(DBCacheFlag.Name), logger)
	if err != nil {
		return nil, err
	}
	hasher := pow.New(pow.Config{PowMode: pow.ParseMode(viper.GetString(PowModeFlag.Name)), Log: logger})
	reg := actions.DefaultRegistry(hasher)
	minter := pow.NewMinter(MintConfigFromViper(), hasher, reg, logger)
	pool := txpool.New(txpool.ConfigFrom(&cnf), logger)
	caps := core.Capabilities{Registry: reg, Hasher: hasher, VMs: vm.NewFactory()}
	eng, err := core.New(cnf, caps, minter, pool, dbs, logger)
	if err != nil {
		dbs.Close()
		return nil, errors.Wrap(err, "open chain engine")
	}
	b := &HacashBackend{
		ID:      id,
		Engine:  eng,
		Pool:    pool,
		Peers:   protocol.NewPeers(),
		dbs:     dbs,
		dataDir: cnf.DataDir,
		logger:  logger,
	}

	b.Handler = protocol.NewHandler(eng, pool, reg, hasher, logger)
	b.Handler.SetPeerSet(b.Peers)
	go b.Handler.Start(ex.Worker())
	lw := ex.Worker()
	if err := protocol.Listen(viper.GetString(P2PAddrFlag.Name), b.Peers, b.Handler, lw); err != nil {
		lw.End()
		b.Close()
		return nil, err
	}
	go b.dialPeers()

	if cnf.MinerEnable {
		threads := viper.GetInt(MinerThreadsFlag.Name)
		if threads == 0 {
			threads = runtime.NumCPU()
		}
		hasher.SetThreads(threads)
		b.Miner = core.NewMiner(eng, hasher, logger)
		go b.Miner.Run(ex.Worker())
	}

	if addr := viper.GetString(HTTPAddrFlag.Name); addr != "" {
		rate := viper.GetInt(HTTPRateFlag.Name)
		apiCnf := hacashapi.Config{
			Addr:        addr,
			CorsOrigins: viper.GetStringSlice(HTTPCorsFlag.Name),
			SubmitRate:  float64(rate),
			SubmitBurst: rate * 2,
		}
		var miner hacashapi.PendingBlocks
		if b.Miner != nil {
			miner = b.Miner
		}
		b.API = hacashapi.NewServer(apiCnf, eng, b.Handler, miner, logger)
		if err := b.API.Start(ex.Worker()); err != nil {
			b.Close()
			return nil, err
		}
	}

	if viper.GetBool(MetricsEnabledFlag.Name) {
		logger.WithField("addr", viper.GetString(MetricsAddrFlag.Name)).Info("Starting metrics")
		metrics_config.EnableMetrics()
		metrics_config.StartProcessMetrics(viper.GetString(MetricsAddrFlag.Name), cnf.DataDir)
	}
	return b, nil
}

// dialPeers connects to the boot nodes and to the stable nodes remembered
// from the last run.
func (b *HacashBackend) dialPeers() {
	nodes := viper.GetStringSlice(BootNodesFlag.Name)
	stable, err := protocol.LoadStableNodes(filepath.Join(b.dataDir, constants.STABLE_NODES_FILE_NAME))
	if err != nil {
		b.logger.WithField("err", err).Warn("Failed to read stable nodes")
	}
	seen := make(map[string]bool)
	for _, addr := range append(nodes, stable...) {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		if err := protocol.Dial(addr, b.Peers, b.Handler); err != nil {
			b.logger.WithFields(log.Fields{"peer": addr, "err": err}).Debug("Failed to dial peer")
		}
	}
}

// Close remembers the connected peers and closes the engine and its
// databases. Call it after the exiter jobs have finished.
func (b *HacashBackend) Close() {
	if ids := b.Peers.IDs(); len(ids) > 0 {
		if limit := viper.GetInt(MaxPeersFlag.Name); limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
		path := filepath.Join(b.dataDir, constants.STABLE_NODES_FILE_NAME)
		if err := protocol.SaveStableNodes(path, ids); err != nil {
			b.logger.WithField("err", err).Warn("Failed to save stable nodes")
		}
	}
	b.Engine.Close()
	if err := b.dbs.Close(); err != nil {
		b.logger.WithField("err", err).Error("Failed to close databases")
	}
}

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}
