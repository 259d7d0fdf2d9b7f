package params

// Protocol limits and historical fork heights.
const (
	TxActionsMax     = 200 // actions in one tx, also the AST select list bound
	AstTreeDepthMax  = 6   // nested AstSelect/AstIf levels
	MainCallDepthMax = 100
	ContractCallMax  = 101
	DiamondListMax   = 200
	BalanceAssetMax  = 20

	// GSCU is the gas size compute unit: the tx level fee purity is the fee
	// in 238 units per GSCU bytes of serialized transaction.
	GSCU = 32

	// a simple hac transfer is 166 bytes, the lowest fee 1:244 pays 10^6 in
	// 238 units. The pool purity is per byte.
	SimpleTransferSize     = 166
	DefaultLowestFeePurity = 1000000 / SimpleTransferSize

	HacSelfTransferCheckHeight = 200000 // self transfer only checks the balance from here on
	FeeSizeLimitHeight         = 200000 // fee amount serialization capped at 6 bytes above
	FeeSizeMax                 = 6
	TxTypeOneForbidHeight      = 33033 // type <= 1 txs are rejected above
	HacAmountSizeMax           = 12    // serialized size of any stored hac amount

	// Diamond mint schedule.
	DiamondMintPeriod          = 5     // a diamond can be mined every 5 blocks
	DiamondMintBidCheckHeight  = 630000
	DiamondMintFirstTxHeight   = 600000
	DiamondBurn90AboveNumber   = 30000 // bid fees of later diamonds burn 90%
	DiamondForceBidCheckNumber = 107000
	DiamondMintMaxNumber       = 16777216

	// Block data limits.
	BlockSizeTolerance = 100 // extra bytes of framing allowed on top of max_block_size

	// Sync pipeline reply caps.
	BlockReplyMaxBytes  = 20 * 1024 * 1024
	BlockReplyMaxBlocks = 10000

	// Recent fee purity window.
	AvgFeeRingSize   = 8
	AvgFeeMinTxCount = 30
)

// Units of Amount. A value is significand * 10^unit, so unit 248 is mei
// (one coin) and 240 is zhu.
const (
	UnitMei  uint8 = 248
	UnitZhu  uint8 = 240
	UnitShuo uint8 = 232
	UnitAi   uint8 = 224
	UnitMiao uint8 = 216
)
