package swap

import "fmt"

// Response is the tagged-union of provider-returned swap data. Like
// Request, implementations are confined to this package.
type Response interface {
	isResponse()
}

// TaprootTree is the raw leaf-script bytes the provider returns for a
// swap's VHTLC, keyed by leaf name. vhtlc's ExtractAbsoluteLocktime,
// ExtractRelativeDelay and ExtractCounterpartyPubkey read timeout and
// key metadata from individual leaves (spec §4.1's restoration
// inspection).
type TaprootTree struct {
	ClaimLeaf                     []byte
	RefundLeaf                    []byte
	RefundWithoutReceiverLeaf     []byte
	UnilateralClaimLeaf           []byte
	UnilateralRefundLeaf          []byte
	UnilateralRefundWithoutReceiverLeaf []byte
}

// Timeouts bundles the four timeout values a VHTLC is parameterized
// by. RefundLocktime is absolute (block height); the rest are relative
// delays encoded per BIP68 (spec §4.1).
type Timeouts struct {
	RefundLocktime                  uint32
	UnilateralClaimDelay             uint32
	UnilateralRefundDelay            uint32
	UnilateralRefundWithoutReceiverDelay uint32
}

// Validate enforces invariant I6:
// refund < unilateralClaim < unilateralRefund < unilateralRefundWithoutReceiver,
// all strictly positive.
func (t Timeouts) Validate() error {
	vals := []uint32{
		t.RefundLocktime, t.UnilateralClaimDelay,
		t.UnilateralRefundDelay, t.UnilateralRefundWithoutReceiverDelay,
	}
	for i, v := range vals {
		if v == 0 {
			return fmt.Errorf("timeout value at position %d must be strictly positive", i)
		}
	}
	if !(t.RefundLocktime < t.UnilateralClaimDelay &&
		t.UnilateralClaimDelay < t.UnilateralRefundDelay &&
		t.UnilateralRefundDelay < t.UnilateralRefundWithoutReceiverDelay) {
		return fmt.Errorf("timeouts must satisfy refund < unilateralClaim < " +
			"unilateralRefund < unilateralRefundWithoutReceiver")
	}
	return nil
}

// Limits bundles a swap type's fees+limits window, as advertised by
// the provider's GET fees+limits endpoint (spec §4.2). Engines fetch
// this before submitting a create call and reject locally when the
// requested amount falls outside it (spec §8).
type Limits struct {
	MinSat int64
	MaxSat int64
}

// InRange reports whether amountSat falls within [MinSat, MaxSat].
func (l Limits) InRange(amountSat int64) bool {
	return amountSat >= l.MinSat && amountSat <= l.MaxSat
}

// SubmarineResponse is returned when a submarine swap is created.
type SubmarineResponse struct {
	LockupAddress    string
	ExpectedAmountSat int64
	ServerPubkey     [32]byte
	Timeouts         Timeouts
	Tree             TaprootTree
}

func (*SubmarineResponse) isResponse() {}

// ReverseResponse is returned when a reverse swap is created.
type ReverseResponse struct {
	Invoice           string
	LockupAddress     string
	OnchainAmountSat  int64
	ServerPubkey      [32]byte
	Timeouts          Timeouts
	Tree              TaprootTree
}

func (*ReverseResponse) isResponse() {}

// ChainResponse is returned when a chain swap is created. It carries
// two VHTLC trees: the claim-side (where the user will claim) and the
// lockup side (where the user deposits), per spec §4.8
// verifyChainSwap rebuilding both.
type ChainResponse struct {
	LockupAddress    string
	ClaimAddress     string
	ExpectedAmountSat int64
	ServerPubkey     [32]byte
	LockupTimeouts   Timeouts
	ClaimTimeouts    Timeouts
	LockupTree       TaprootTree
	ClaimTree        TaprootTree
}

func (*ChainResponse) isResponse() {}
