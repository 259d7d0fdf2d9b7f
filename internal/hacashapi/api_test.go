package hacashapi

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacash/node/consensus/pow"
	"github.com/hacash/node/core"
	"github.com/hacash/node/core/actions"
	"github.com/hacash/node/core/rawdb"
	"github.com/hacash/node/core/txpool"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/core/vm"
	"github.com/hacash/node/log"
	"github.com/hacash/node/params"
)

var (
	testHasher = pow.NewFaker()
	testReg    = actions.DefaultRegistry(testHasher)
	testMiner  = types.NewAccountFromPassword("miner")
)

func TestMain(m *testing.M) {
	log.Global.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type pendingFunc func() *types.Block

func (f pendingFunc) Pending() *types.Block { return f() }

func newTestEngine(t *testing.T, blocks int) *core.Engine {
	t.Helper()
	cnf := params.DefaultEngineConfig
	cnf.TxPoolMaxs = append([]int(nil), cnf.TxPoolMaxs...)
	cnf.LowestFeePurity = 1
	cnf.MinerEnable = true
	cnf.RecentBlocks = true
	pool := txpool.New(txpool.ConfigFrom(&cnf), log.NewDiscardLogger())
	minter := pow.NewMinter(params.DefaultMintConfig, testHasher, testReg, log.NewDiscardLogger())
	caps := core.Capabilities{Registry: testReg, Hasher: testHasher, VMs: vm.NewFactory()}
	eng, err := core.New(cnf, caps, minter, pool, rawdb.NewMemoryDatabases(), log.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	mine(t, eng, blocks)
	return eng
}

func nextBlocks(eng *core.Engine, n int) []*types.BlockPkg {
	return core.GenerateChain(testReg, testHasher, eng.Latest(), n, func(i int, b *core.BlockGen) {
		b.SetCoinbase(testMiner.Address)
		b.SetMessage("api")
	})
}

func mine(t *testing.T, eng *core.Engine, n int) []*types.BlockPkg {
	t.Helper()
	blocks := nextBlocks(eng, n)
	for _, pkg := range core.WithOrigin(blocks, types.BlkOriginDiscover) {
		require.NoError(t, eng.Discover(pkg))
	}
	return blocks
}

func newTestServer(t *testing.T, eng *core.Engine, miner PendingBlocks) *Server {
	cnf := DefaultConfig
	cnf.SubmitRate = 0
	return NewServer(cnf, eng, nil, miner, log.NewDiscardLogger())
}

func call(t *testing.T, h http.Handler, method, target string, body []byte) map[string]any {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireOK(t *testing.T, res map[string]any) {
	t.Helper()
	require.EqualValues(t, 0, res["ret"], "err: %v", res["err"])
}

func TestGateway(t *testing.T) {
	h := newTestServer(t, newTestEngine(t, 0), nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Hacash Api Server", rec.Body.String())

	res := call(t, h, http.MethodGet, "/no/such/route", nil)
	assert.EqualValues(t, 1, res["ret"])
	assert.Equal(t, "api not find", res["err"])
}

func TestQueryLatestAndBlock(t *testing.T) {
	eng := newTestEngine(t, 3)
	h := newTestServer(t, eng, nil).Handler()

	res := call(t, h, http.MethodGet, "/query/latest", nil)
	requireOK(t, res)
	assert.EqualValues(t, 3, res["height"])
	assert.Equal(t, eng.Latest().Hash.Hex(), res["hash"])

	hash, _ := eng.Store().BlockHash(2)
	res = call(t, h, http.MethodGet, "/query/block/intro?height=2&tx_hash_list=true", nil)
	requireOK(t, res)
	assert.Equal(t, hash.Hex(), res["hash"])
	assert.Equal(t, testMiner.Address.Readable(), res["miner"])
	assert.Equal(t, "1:248", res["reward"])
	assert.Equal(t, "api", res["message"])
	assert.EqualValues(t, 0, res["transaction"])
	assert.Empty(t, res["tx_hash_list"])

	res = call(t, h, http.MethodGet, "/query/block/intro?hash="+hash.Hex(), nil)
	requireOK(t, res)
	assert.EqualValues(t, 2, res["height"])

	res = call(t, h, http.MethodGet, "/query/block/intro?height=9", nil)
	assert.Equal(t, "cannot find block", res["err"])

	res = call(t, h, http.MethodGet, "/query/block/recents", nil)
	requireOK(t, res)
	list := res["list"].([]any)
	require.Len(t, list, 3)
	assert.EqualValues(t, 3, list[0].(map[string]any)["height"])
}

func TestQueryBalance(t *testing.T) {
	eng := newTestEngine(t, 3)
	h := newTestServer(t, eng, nil).Handler()
	alice := types.NewAccountFromPassword("alice")

	q := url.Values{"address": {testMiner.Address.Readable() + "," + alice.Address.Readable()}}
	res := call(t, h, http.MethodGet, "/query/balance?"+q.Encode(), nil)
	requireOK(t, res)
	list := res["list"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "3:248", list[0].(map[string]any)["hacash"])
	assert.Equal(t, "0:0", list[1].(map[string]any)["hacash"])

	res = call(t, h, http.MethodGet, "/query/balance?unit=mei&address="+testMiner.Address.Readable(), nil)
	requireOK(t, res)
	assert.Equal(t, "3", res["list"].([]any)[0].(map[string]any)["hacash"])

	res = call(t, h, http.MethodGet, "/query/balance?address=nope", nil)
	assert.EqualValues(t, 1, res["ret"])
	assert.Contains(t, res["err"], "address nope format error")

	res = call(t, h, http.MethodGet, "/query/balance", nil)
	assert.Equal(t, "address format error", res["err"])
}

func TestQueryFeeAverage(t *testing.T) {
	eng := newTestEngine(t, 1)
	h := newTestServer(t, eng, nil).Handler()

	res := call(t, h, http.MethodGet, "/query/fee/average", nil)
	requireOK(t, res)
	assert.EqualValues(t, eng.AverageFeePurity(), res["purity"])
	assert.Nil(t, res["feasible"])

	res = call(t, h, http.MethodGet, "/query/fee/average?consumption=200", nil)
	requireOK(t, res)
	assert.NotEmpty(t, res["feasible"])
}

func TestQueryDiamondMissing(t *testing.T) {
	h := newTestServer(t, newTestEngine(t, 1), nil).Handler()
	res := call(t, h, http.MethodGet, "/query/diamond?name=WTYUIA", nil)
	assert.Equal(t, "cannot find diamond", res["err"])
	res = call(t, h, http.MethodGet, "/query/diamond?name=abc", nil)
	assert.Equal(t, "diamond name error", res["err"])
	res = call(t, h, http.MethodGet, "/query/diamond?number=1", nil)
	assert.Equal(t, "cannot find diamond", res["err"])
}

func TestCreateSubmitAndQueryTransfer(t *testing.T) {
	eng := newTestEngine(t, 2)
	h := newTestServer(t, eng, nil).Handler()
	alice := types.NewAccountFromPassword("alice")

	q := url.Values{
		"main_prikey": {"miner"},
		"to_address":  {alice.Address.Readable()},
		"fee":         {"1:244"},
		"hacash":      {"1:248"},
	}
	res := call(t, h, http.MethodGet, "/create/transfer?"+q.Encode(), nil)
	requireOK(t, res)
	body := res["body"].(string)
	hash := res["hash"].(string)

	res = call(t, h, http.MethodPost, "/submit/transaction?hexbody=true", []byte(body))
	requireOK(t, res)
	assert.Equal(t, hash, res["hash"])
	assert.Equal(t, 1, eng.TxPool().Len(params.TxGroupNormal))

	res = call(t, h, http.MethodGet, "/query/transaction?action=true&hash="+hash, nil)
	requireOK(t, res)
	assert.Equal(t, true, res["pending"])
	assert.Equal(t, testMiner.Address.Readable(), res["main"])
	assert.Len(t, res["actions"], 1)

	res = call(t, h, http.MethodGet, "/query/transaction?body=true&binary=base64&hash="+hash, nil)
	requireOK(t, res)
	b64 := res["body"].(string)
	assert.True(t, strings.HasPrefix(b64, "b64:"), b64)
	decoded, err := types.DecodeBinary(b64)
	require.NoError(t, err)
	assert.Equal(t, body, hex.EncodeToString(decoded))

	// the same tx again is refused by the pool
	res = call(t, h, http.MethodPost, "/submit/transaction?hexbody=true", []byte(body))
	assert.EqualValues(t, 1, res["ret"])

	raw, err := hex.DecodeString(body)
	require.NoError(t, err)
	res = call(t, h, http.MethodPost, "/submit/transaction", raw[:len(raw)-1])
	assert.Contains(t, res["err"], "transaction parse error")

	res = call(t, h, http.MethodGet, "/query/transaction?hash=00", nil)
	assert.Equal(t, "transaction hash format error", res["err"])
	res = call(t, h, http.MethodGet, "/query/transaction?hash="+strings.Repeat("ab", 32), nil)
	assert.Equal(t, "transaction not find", res["err"])
}

func TestCreateTransferChecks(t *testing.T) {
	h := newTestServer(t, newTestEngine(t, 0), nil).Handler()
	alice := types.NewAccountFromPassword("alice")
	base := url.Values{
		"main_prikey": {"miner"},
		"to_address":  {alice.Address.Readable()},
		"fee":         {"1:244"},
	}
	res := call(t, h, http.MethodGet, "/create/transfer?"+base.Encode(), nil)
	assert.Equal(t, "transfer need hacash, satoshi or diamonds", res["err"])

	bad := url.Values{"to_address": {"x"}}
	res = call(t, h, http.MethodGet, "/create/transfer?"+bad.Encode(), nil)
	assert.Contains(t, res["err"], "to_address format error")

	base.Set("satoshi", "100")
	base.Set("from_prikey", "alice")
	res = call(t, h, http.MethodGet, "/create/transfer?"+base.Encode(), nil)
	requireOK(t, res)
	raw, err := hex.DecodeString(res["body"].(string))
	require.NoError(t, err)
	pkg, err := types.ParseTxPkg(testReg, raw)
	require.NoError(t, err)
	require.Len(t, pkg.Tx.Actions(), 1)
	assert.Equal(t, uint16(actions.KindSatFromToTrs), pkg.Tx.Actions()[0].Kind())
	assert.NoError(t, pkg.Tx.VerifySignature())
}

func TestSubmitBlock(t *testing.T) {
	eng := newTestEngine(t, 2)
	h := newTestServer(t, eng, nil).Handler()

	next := nextBlocks(eng, 1)[0]
	res := call(t, h, http.MethodPost, "/submit/block", next.Data)
	requireOK(t, res)
	assert.Equal(t, next.Hash, eng.Latest().Hash)

	res = call(t, h, http.MethodPost, "/submit/block", next.Data)
	assert.Contains(t, res["err"], "submit block error")
	res = call(t, h, http.MethodPost, "/submit/block", []byte{1, 2, 3})
	assert.Contains(t, res["err"], "block parse error")
}

func TestMinerPending(t *testing.T) {
	eng := newTestEngine(t, 1)
	res := call(t, newTestServer(t, eng, nil).Handler(), http.MethodGet, "/query/miner/pending", nil)
	assert.Equal(t, "miner not enable", res["err"])

	next := nextBlocks(eng, 1)[0].Block
	miner := pendingFunc(func() *types.Block { return next })
	res = call(t, newTestServer(t, eng, miner).Handler(), http.MethodGet, "/query/miner/pending?detail=true", nil)
	requireOK(t, res)
	assert.EqualValues(t, 2, res["height"])
	assert.Equal(t, "1:248", res["reward"])
	assert.Equal(t, hex.EncodeToString(next.BlockIntro.Serialize()), res["intro"])

	idle := pendingFunc(func() *types.Block { return nil })
	res = call(t, newTestServer(t, eng, idle).Handler(), http.MethodGet, "/query/miner/pending", nil)
	assert.Equal(t, "pending block not ready", res["err"])
}

func TestSubmitRateLimit(t *testing.T) {
	cnf := DefaultConfig
	cnf.SubmitRate = 0.001
	cnf.SubmitBurst = 1
	h := NewServer(cnf, newTestEngine(t, 0), nil, nil, log.NewDiscardLogger()).Handler()

	res := call(t, h, http.MethodPost, "/submit/block", []byte{1})
	assert.Contains(t, res["err"], "block parse error")

	req := httptest.NewRequest(http.MethodPost, "/submit/block", bytes.NewReader([]byte{1}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limiting")

	// queries are not limited
	res = call(t, h, http.MethodGet, "/query/latest", nil)
	requireOK(t, res)
}

func TestCors(t *testing.T) {
	h := newTestServer(t, newTestEngine(t, 0), nil).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/submit/transaction", nil)
	req.Header.Set("Origin", "http://wallet.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNoticeWebsocket(t *testing.T) {
	eng := newTestEngine(t, 2)
	srv := httptest.NewServer(newTestServer(t, eng, nil).Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/notice", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	assert.EqualValues(t, 2, msg["height"])

	mine(t, eng, 1)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.EqualValues(t, 3, msg["height"])
}
