package hacashapi

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
)

const maxBalanceAddrs = 200

func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	head := s.backend.Latest()
	data := headData(head)
	if s.backend.TxPool() != nil {
		data["txpool"] = s.backend.TxPool().Len(0)
	}
	sendData(w, data)
}

func headData(head *types.BlockPkg) jsonData {
	return jsonData{
		"height":    head.Height,
		"hash":      head.Hash.Hex(),
		"timestamp": uint64(head.Block.Timestamp),
	}
}

// loadBlock finds a block by 64 hex hash or by height.
func (s *Server) loadBlock(key string) (*types.BlockPkg, error) {
	store := s.backend.Store()
	caps := s.backend.Capabilities()
	var (
		data []byte
		ok   bool
	)
	if len(key) == common.HashLength*2 {
		if hash, err := common.HexToHash(key); err == nil {
			data, ok = store.BlockData(hash)
		}
	}
	if !ok {
		if height, err := strconv.ParseUint(key, 10, 64); err == nil {
			_, data, ok = store.BlockDataByHeight(height)
		}
	}
	if !ok {
		return nil, fmt.Errorf("block not find")
	}
	pkg, err := types.NewBlockPkg(caps.Registry, caps.Hasher, data, types.BlkOriginUnknown)
	if err != nil {
		return nil, fmt.Errorf("block parse error: %v", err)
	}
	return pkg, nil
}

func coinbaseMessage(cb *types.CoinbaseTx) string {
	return strings.TrimRight(string(cb.Message[:]), "\x00 ")
}

func (s *Server) blockIntro(w http.ResponseWriter, r *http.Request) {
	key := qString(r, "hash", "")
	if h := qUint(r, "height", 0); h > 0 {
		key = strconv.FormatUint(h, 10)
	}
	pkg, err := s.loadBlock(key)
	if err != nil {
		sendError(w, "cannot find block")
		return
	}
	blk := pkg.Block
	data := jsonData{
		"hash":        pkg.Hash.Hex(),
		"version":     uint8(blk.Version),
		"height":      pkg.Height,
		"timestamp":   uint64(blk.Timestamp),
		"mrklroot":    blk.MrklRoot.Hex(),
		"prevhash":    blk.PrevHash.Hex(),
		"nonce":       uint32(blk.Nonce),
		"difficulty":  uint32(blk.Difficulty),
		"transaction": len(blk.Txs) - 1,
	}
	if cb, err := blk.Coinbase(); err == nil {
		data["miner"] = cb.Address.Readable()
		data["reward"] = amountString(r, cb.Reward)
		data["message"] = coinbaseMessage(cb)
	}
	if qBool(r, "tx_hash_list") {
		hashes := make([]string, 0, len(blk.Txs))
		for _, tx := range blk.Txs[1:] {
			hashes = append(hashes, tx.Hash().Hex())
		}
		data["tx_hash_list"] = hashes
	}
	sendData(w, data)
}

func (s *Server) blockRecents(w http.ResponseWriter, r *http.Request) {
	recents := s.backend.RecentBlocks()
	list := make([]jsonData, 0, len(recents))
	for _, rb := range recents {
		txs := rb.Txs
		if txs > 0 {
			txs--
		}
		list = append(list, jsonData{
			"height":  rb.Height,
			"hash":    rb.Hash.Hex(),
			"prev":    rb.Prev.Hex(),
			"txs":     txs,
			"miner":   rb.Miner.Readable(),
			"message": rb.Message,
			"reward":  amountString(r, rb.Reward),
			"time":    rb.Time,
			"arrive":  rb.ArriveAt,
		})
	}
	sendList(w, list)
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	raw := strings.NewReplacer(" ", "", "\n", "").Replace(qString(r, "address", ""))
	if raw == "" {
		sendError(w, "address format error")
		return
	}
	addrs := strings.Split(raw, ",")
	if len(addrs) > maxBalanceAddrs {
		sendError(w, fmt.Sprintf("address max %d", maxBalanceAddrs))
		return
	}
	st := state.Wrap(s.backend.State())
	list := make([]jsonData, 0, len(addrs))
	for _, a := range addrs {
		addr, err := common.ParseAddress(a)
		if err != nil {
			sendError(w, fmt.Sprintf("address %s format error: %v", a, err))
			return
		}
		bls, _ := st.Balance(addr)
		item := jsonData{
			"hacash":  amountString(r, bls.Hacash),
			"diamond": uint64(bls.Diamond),
			"satoshi": uint64(bls.Satoshi),
		}
		if qBool(r, "diamonds") {
			owned, _ := st.DiamondOwned(addr)
			item["diamonds"] = owned.Readable()
		}
		if qBool(r, "assets") {
			assets := make([]jsonData, 0, bls.Assets.Len())
			for _, ast := range bls.Assets.Items {
				assets = append(assets, jsonData{"serial": uint64(ast.Serial), "amount": uint64(ast.Amount)})
			}
			item["assets"] = assets
		}
		list = append(list, item)
	}
	sendList(w, list)
}

func (s *Server) diamond(w http.ResponseWriter, r *http.Request) {
	st := state.Wrap(s.backend.State())
	var name types.DiamondName
	if num := qUint(r, "number", 0); num > 0 {
		n, ok := st.DiamondName(uint32(num))
		if !ok {
			sendError(w, "cannot find diamond")
			return
		}
		name = n
	} else {
		raw := qString(r, "name", "")
		if !types.IsValidDiamondName([]byte(raw)) {
			sendError(w, "diamond name error")
			return
		}
		copy(name[:], raw)
	}
	sto, ok := st.Diamond(name)
	if !ok {
		sendError(w, "cannot find diamond")
		return
	}
	smelt, ok := st.DiamondSmelt(name)
	if !ok {
		sendError(w, "cannot find diamond")
		return
	}
	inscripts := make([]string, 0, sto.Inscripts.Len())
	for _, ins := range sto.Inscripts.Items {
		inscripts = append(inscripts, string(ins))
	}
	sendData(w, jsonData{
		"name":         string(name[:]),
		"belong":       sto.Address.Readable(),
		"inscriptions": inscripts,
		"number":       uint32(smelt.Number),
		"miner":        smelt.MinerAddress.Readable(),
		"born": jsonData{
			"height": uint64(smelt.BornHeight),
			"hash":   smelt.BornHash.Hex(),
		},
		"prev_hash":        smelt.PrevHash.Hex(),
		"bid_fee":          amountString(r, smelt.BidFee),
		"average_bid_burn": uint16(smelt.AverageBidBurn),
		"life_gene":        smelt.LifeGene.Hex(),
	})
}

func (s *Server) feeAverage(w http.ResponseWriter, r *http.Request) {
	purity := s.backend.AverageFeePurity()
	data := jsonData{"purity": purity}
	if consumption := qUint(r, "consumption", 0); consumption > 0 {
		fee := types.NewAmountCoin(purity*consumption, 238)
		if fee.IsZero() {
			fee = types.NewAmountZhu(1)
		}
		if qBool(r, "burn90") {
			if f, err := fee.DistMul(10); err == nil {
				fee = f
			}
		}
		data["feasible"] = amountString(r, fee)
	}
	sendData(w, data)
}

func (s *Server) transaction(w http.ResponseWriter, r *http.Request) {
	raw, err := hex.DecodeString(qString(r, "hash", ""))
	if err != nil || len(raw) != common.HashLength {
		sendError(w, "transaction hash format error")
		return
	}
	hash := common.BytesToHash(raw)
	if pool := s.backend.TxPool(); pool != nil {
		if pkg, ok := pool.Find(hash); ok {
			info := renderTx(r, pkg.Tx)
			info["pending"] = true
			sendData(w, info)
			return
		}
	}
	height, ok := state.Wrap(s.backend.State()).TxExist(hash)
	if !ok {
		sendError(w, "transaction not find")
		return
	}
	pkg, err := s.loadBlock(strconv.FormatUint(height, 10))
	if err != nil {
		sendError(w, "cannot find block by transaction ptr")
		return
	}
	for _, tx := range pkg.Block.Txs[1:] {
		if tx.Hash() != hash {
			continue
		}
		info := renderTx(r, tx)
		info["block"] = jsonData{"height": pkg.Height, "timestamp": uint64(pkg.Block.Timestamp)}
		info["confirm"] = s.backend.Latest().Height - pkg.Height
		sendData(w, info)
		return
	}
	sendError(w, "transaction not find in the block")
}

func renderTx(r *http.Request, tx types.Transaction) jsonData {
	info := jsonData{
		"hash":          tx.Hash().Hex(),
		"hash_with_fee": tx.HashWithFee().Hex(),
		"type":          tx.Type(),
		"main":          tx.Main().Readable(),
		"fee":           amountString(r, tx.Fee()),
		"fee_got":       amountString(r, tx.FeeGot()),
		"timestamp":     tx.Timestamp(),
		"action":        len(tx.Actions()),
	}
	if qBool(r, "action") {
		acts := make([]jsonData, 0, len(tx.Actions()))
		for _, act := range tx.Actions() {
			acts = append(acts, jsonData{"kind": act.Kind(), "description": act.Describe()})
		}
		info["actions"] = acts
	}
	if qBool(r, "body") {
		info["body"] = binaryString(r, tx.Serialize())
	}
	if qBool(r, "signature") {
		signs := make([]jsonData, 0, len(tx.Signs()))
		for _, sg := range tx.Signs() {
			signs = append(signs, jsonData{
				"address":   sg.Address().Readable(),
				"signature": binaryString(r, sg.Signature[:]),
			})
		}
		info["signatures"] = signs
	}
	return info
}
