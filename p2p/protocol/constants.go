package protocol

const (
	// ProtocolVersion is the current version of the hacash peer protocol
	ProtocolVersion = "/hacash/1"
)

// Message types of the peer protocol.
const (
	MsgReqStatus     uint16 = 1
	MsgStatus        uint16 = 2
	MsgReqBlockHash  uint16 = 3
	MsgBlockHash     uint16 = 4
	MsgReqBlock      uint16 = 5
	MsgBlock         uint16 = 6
	MsgTxSubmit      uint16 = 7
	MsgBlockDiscover uint16 = 8
)

const (
	maxSendBlockSize = 20 * 1024 * 1024 // block reply cap in bytes
	maxSendBlockNum  = 10000            // block reply cap in blocks
	maxReqHashes     = 80               // largest accepted hash request
	knowledgeSize    = 200              // recently seen tx and block hashes
	arrivalQueueSize = 4000
)

// Handshake constants announced in the status message.
const (
	statusBlockVersion = 1
	statusTxType       = 2
	statusActionKind   = 12
	statusRepairSerial = 1
)
