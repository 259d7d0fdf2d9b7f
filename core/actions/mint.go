package actions

import (
	"fmt"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/operate"
	"github.com/hacash/node/core/state"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/params"
)

// Diamond numbers at which the mint rules changed.
const (
	diamondCustomMessageAbove = 20000
	diamondLifeGeneAbove      = 40000
	diamondLifeGeneFeeAbove   = 41000
	diamondDefaultAvgBurn     = 10 // mei
)

// DiamondMint mints the next HACD to Address. The custom message is only
// present on the wire above number 20000.
type DiamondMint struct {
	Diamond       types.DiamondName
	Number        types.DiamondNumber
	PrevHash      common.Hash
	Nonce         types.Fixed8
	Address       common.Address
	CustomMessage common.Hash

	hasher DiamondHasher
}

// NewDiamondMint creates an empty mint verified by dh.
func NewDiamondMint(dh DiamondHasher) *DiamondMint { return &DiamondMint{hasher: dh} }

func (a *DiamondMint) Kind() uint16                { return KindDiamondMint }
func (a *DiamondMint) Level() types.ActLv          { return types.ActLvTopOnly }
func (a *DiamondMint) Burn90() bool                { return uint32(a.Number) > params.DiamondBurn90AboveNumber }
func (a *DiamondMint) ReqSign() []types.AddrOrPtr  { return nil }
func (a *DiamondMint) MintNumber() uint32          { return uint32(a.Number) }
func (a *DiamondMint) MintName() types.DiamondName { return a.Diamond }

func (a *DiamondMint) Describe() string {
	return fmt.Sprintf("Mint diamond %s number %d to %s", string(a.Diamond[:]), a.Number, a.Address)
}

func (a *DiamondMint) hasCustom() bool { return uint32(a.Number) > diamondCustomMessageAbove }

func (a *DiamondMint) fields() []types.Field {
	fs := []types.Field{&a.Diamond, &a.Number, &a.PrevHash, &a.Nonce, &a.Address}
	if a.hasCustom() {
		fs = append(fs, &a.CustomMessage)
	}
	return fs
}

func (a *DiamondMint) Parse(buf []byte) (int, error) {
	n, err := types.ParseActionBody(KindDiamondMint, buf, &a.Diamond, &a.Number, &a.PrevHash, &a.Nonce, &a.Address)
	if err != nil || !a.hasCustom() {
		return n, err
	}
	m, err := a.CustomMessage.Parse(buf[n:])
	if err != nil {
		return 0, fmt.Errorf("action %d: %w", KindDiamondMint, err)
	}
	return n + m, nil
}
func (a *DiamondMint) Serialize() []byte { return types.SerializeActionBody(KindDiamondMint, a.fields()...) }
func (a *DiamondMint) Size() int         { return types.ActionBodySize(a.fields()...) }

func (a *DiamondMint) custom() []byte {
	if a.hasCustom() {
		return a.CustomMessage.Serialize()
	}
	return nil
}

// verify checks the mint against the chain head and the diamond PoW.
func (a *DiamondMint) verify(env *types.Env, st state.CoreState, sshash, medium common.Hash, res [16]byte) error {
	number := uint32(a.Number)
	if !env.Block.Hash.IsZero() && env.Block.Height%params.DiamondMintPeriod != 0 {
		return fmt.Errorf("diamond must be contained in block height are highly divisible by %d", params.DiamondMintPeriod)
	}
	latest, _ := st.LatestDiamond()
	if need := uint32(latest.Number) + 1; need != number {
		return fmt.Errorf("diamond number need %d but got %d", need, number)
	}
	if number > 1 && latest.BornHash != a.PrevHash {
		return fmt.Errorf("diamond prev hash need %s but got %s", latest.BornHash, a.PrevHash)
	}
	if !a.hasher.CheckDifficulty(number, sshash, medium) {
		return fmt.Errorf("diamond difficulty not match")
	}
	name, ok := a.hasher.DiamondName(res)
	if !ok {
		return fmt.Errorf("diamond hash result %s not a valid diamond name", string(res[:]))
	}
	if name != a.Diamond {
		return fmt.Errorf("diamond name need %s but got %s", string(name[:]), string(a.Diamond[:]))
	}
	if _, exist := st.Diamond(a.Diamond); exist {
		return fmt.Errorf("diamond %s already exist", string(a.Diamond[:]))
	}
	return nil
}

func (a *DiamondMint) Execute(ctx types.Context) ([]byte, error) {
	env := ctx.Env()
	if err := a.Address.MustPrivakey(); err != nil {
		return nil, err
	}
	if a.hasher == nil {
		return nil, fmt.Errorf("diamond hasher not set")
	}
	number := uint32(a.Number)
	sshash, medium, res := a.hasher.MineDiamond(number, a.PrevHash, a.Nonce, a.Address, a.custom())
	st := state.Wrap(ctx.State())
	if !env.Chain.FastSync {
		if err := a.verify(env, st, sshash, medium, res); err != nil {
			return nil, err
		}
	}
	fee := env.Tx.Fee

	total := st.TotalCount()
	total.MintedDiamond++
	if number > params.DiamondBurn90AboveNumber && fee.Unit > 1 {
		got, err := fee.UnitSub(1)
		if err != nil {
			return nil, err
		}
		burn, err := fee.Sub(got)
		if err != nil {
			return nil, err
		}
		zhu, _ := burn.ToZhuUint64()
		total.DiamondBidBurnZhu += types.Uint8(zhu)
	}

	gene := medium
	if number > diamondLifeGeneAbove {
		parts := [][]byte{medium[:], env.Block.Hash[:]}
		if number > diamondLifeGeneFeeAbove {
			parts = append(parts, fee.Serialize())
		}
		gene = types.Sha3(parts...)
	}
	avgBurn := uint64(diamondDefaultAvgBurn)
	if number > diamondLifeGeneAbove {
		avgBurn = uint64(total.DiamondBidBurnZhu)/100000000/uint64(number-params.DiamondBurn90AboveNumber) + 1
	}

	smelt := state.DiamondSmelt{
		Diamond:        a.Diamond,
		Number:         a.Number,
		BornHeight:     types.BlockHeight(env.Block.Height),
		BornHash:       env.Block.Hash,
		PrevHash:       a.PrevHash,
		MinerAddress:   a.Address,
		BidFee:         fee.Clone(),
		Nonce:          a.Nonce,
		AverageBidBurn: types.Uint2(avgBurn),
		LifeGene:       gene,
	}
	st.SetLatestDiamond(&smelt)
	st.SetDiamondSmelt(a.Diamond, &smelt)
	st.SetDiamond(a.Diamond, &state.DiamondSto{
		Status:  types.Uint1(state.DiamondStatusNormal),
		Address: a.Address,
	})
	st.SetDiamondName(number, a.Diamond)
	if env.Chain.DiamondForm {
		operate.DiamondOwnedAppend(st, a.Address, a.Diamond)
	}
	st.SetTotalCount(&total)
	if _, err := operate.HacdAdd(st, a.Address, 1); err != nil {
		return nil, err
	}
	return nil, nil
}
