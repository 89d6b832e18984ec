package swap

// Request is the tagged-union of client-constructed swap submissions,
// following the teacher's lnwire.Message interface-family pattern: a
// private marker method confines implementations to this package's
// three concrete request types.
type Request interface {
	isRequest()
}

// SubmarineRequest is submitted to create a submarine swap: the user
// wants the provider to pay a Lightning invoice on their behalf.
type SubmarineRequest struct {
	Invoice          string
	RefundPubkey     [32]byte
}

func (*SubmarineRequest) isRequest() {}

// ReverseRequest is submitted to create a reverse swap: the user wants
// a Lightning invoice issued that, once paid, releases Ark funds to
// them.
type ReverseRequest struct {
	InvoiceAmountSat int64
	PreimageHash     [32]byte
	ClaimPubkey      [32]byte
	Description      string
}

func (*ReverseRequest) isRequest() {}

// ChainRequest is submitted to create a chain swap in either
// direction.
type ChainRequest struct {
	Direction Direction

	// Exactly one of these is non-zero (spec §4.8 amount mode).
	SenderLockAmountSat   int64
	ReceiverLockAmountSat int64

	PreimageHash  [32]byte
	ClaimPubkey   [32]byte
	RefundPubkey  [32]byte
	BtcAddress    string
}

func (*ChainRequest) isRequest() {}
