package swapprovider

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swapconfig"
	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// Client is the HTTP surface of a Boltz-compatible swap provider
// (spec §4.2). It never retries and never interprets the response
// beyond schema validation; retry policy belongs to the caller (the
// monitor's polling fallback already owns backoff).
type Client struct {
	baseURL string
	wsURLOverride string
	http    *http.Client
}

// Option configures optional Client behavior beyond the base URL.
type Option func(*Client)

// WithWSURL overrides the WebSocket endpoint the Client would
// otherwise derive from baseURL, taken verbatim rather than combined
// with a derived suffix (spec §6.1's `wsUrl` override).
func WithWSURL(wsURL string) Option {
	return func(c *Client) {
		c.wsURLOverride = wsURL
	}
}

// New constructs a Client against baseURL (the resolved API endpoint,
// spec §6.1's `apiUrl`/network default).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: baseURL, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig constructs a Client from cfg, honoring cfg.WSURL when
// the host set one instead of always deriving the socket endpoint
// from the API base (spec §6.1: "wsUrl" overrides the WebSocket
// endpoint).
func NewFromConfig(cfg *swapconfig.Config) *Client {
	if cfg.WSURL == "" {
		return New(cfg.ResolvedAPIURL())
	}
	return New(cfg.ResolvedAPIURL(), WithWSURL(cfg.ResolvedWSURL()))
}

// CreateSubmarine calls POST /v2/swap/submarine.
func (c *Client) CreateSubmarine(ctx context.Context, req *swap.SubmarineRequest) (string, *swap.SubmarineResponse, error) {
	body := map[string]interface{}{
		"invoice":          req.Invoice,
		"refundPublicKey":  hex.EncodeToString(req.RefundPubkey[:]),
	}
	raw, _, err := c.do(ctx, http.MethodPost, "/v2/swap/submarine", body)
	if err != nil {
		return "", nil, err
	}
	var wire wireSubmarineResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return "", nil, &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	return wire.decode()
}

// CreateReverse calls POST /v2/swap/reverse.
func (c *Client) CreateReverse(ctx context.Context, req *swap.ReverseRequest) (string, *swap.ReverseResponse, error) {
	body := map[string]interface{}{
		"invoiceAmount":  req.InvoiceAmountSat,
		"preimageHash":   hex.EncodeToString(req.PreimageHash[:]),
		"claimPublicKey": hex.EncodeToString(req.ClaimPubkey[:]),
		"description":    req.Description,
	}
	raw, _, err := c.do(ctx, http.MethodPost, "/v2/swap/reverse", body)
	if err != nil {
		return "", nil, err
	}
	var wire wireReverseResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return "", nil, &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	return wire.decode()
}

// CreateChain calls POST /v2/swap/chain.
func (c *Client) CreateChain(ctx context.Context, req *swap.ChainRequest) (string, *swap.ChainResponse, error) {
	body := map[string]interface{}{
		"direction":       string(req.Direction),
		"preimageHash":    hex.EncodeToString(req.PreimageHash[:]),
		"claimPublicKey":  hex.EncodeToString(req.ClaimPubkey[:]),
		"refundPublicKey": hex.EncodeToString(req.RefundPubkey[:]),
		"btcAddress":      req.BtcAddress,
	}
	if req.SenderLockAmountSat > 0 {
		body["senderLockAmount"] = req.SenderLockAmountSat
	}
	if req.ReceiverLockAmountSat > 0 {
		body["receiverLockAmount"] = req.ReceiverLockAmountSat
	}
	raw, _, err := c.do(ctx, http.MethodPost, "/v2/swap/chain", body)
	if err != nil {
		return "", nil, err
	}
	var wire wireChainResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return "", nil, &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	return wire.decode()
}

// GetSubmarineLimits calls GET /v2/swap/submarine, the provider's
// current fees+limits window for submarine swaps (spec §4.2).
func (c *Client) GetSubmarineLimits(ctx context.Context) (*swap.Limits, error) {
	return c.getLimits(ctx, "/v2/swap/submarine")
}

// GetReverseLimits calls GET /v2/swap/reverse.
func (c *Client) GetReverseLimits(ctx context.Context) (*swap.Limits, error) {
	return c.getLimits(ctx, "/v2/swap/reverse")
}

// GetChainLimits calls GET /v2/swap/chain.
func (c *Client) GetChainLimits(ctx context.Context) (*swap.Limits, error) {
	return c.getLimits(ctx, "/v2/swap/chain")
}

func (c *Client) getLimits(ctx context.Context, path string) (*swap.Limits, error) {
	raw, _, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var wire wireLimits
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	return wire.decode()
}

// GetStatus calls GET /v2/swap/{id}, used by the monitor's polling
// fallback.
func (c *Client) GetStatus(ctx context.Context, id string) (swap.Status, error) {
	raw, _, err := c.do(ctx, http.MethodGet, "/v2/swap/"+id, nil)
	if err != nil {
		return "", err
	}
	var wire wireStatus
	if err := json.Unmarshal(raw, &wire); err != nil {
		return "", &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	_, status, err := wire.decode()
	return status, err
}

// SubmitSubmarineRefund calls POST /v2/swap/submarine/{id}/refund/ark
// with the sender's co-signed refund PSBT.
func (c *Client) SubmitSubmarineRefund(ctx context.Context, id string, psbtBase64 string) error {
	body := map[string]interface{}{"transaction": psbtBase64}
	_, _, err := c.do(ctx, http.MethodPost, "/v2/swap/submarine/"+id+"/refund/ark", body)
	return err
}

// GetSubmarinePreimage calls GET /v2/swap/submarine/{id}/preimage,
// retrieving the preimage after settlement.
func (c *Client) GetSubmarinePreimage(ctx context.Context, id string) ([]byte, error) {
	raw, _, err := c.do(ctx, http.MethodGet, "/v2/swap/submarine/"+id+"/preimage", nil)
	if err != nil {
		return nil, err
	}
	var wire wirePreimage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	return wire.decode()
}

// GetReverseTransaction calls GET /v2/swap/reverse/{id}/transaction,
// retrieving the lockup txid.
func (c *Client) GetReverseTransaction(ctx context.Context, id string) (string, error) {
	raw, _, err := c.do(ctx, http.MethodGet, "/v2/swap/reverse/"+id+"/transaction", nil)
	if err != nil {
		return "", err
	}
	var wire wireTransaction
	if err := json.Unmarshal(raw, &wire); err != nil {
		return "", &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	return wire.decode()
}

// GetChainQuote calls GET /v2/swap/chain/{id}/quote.
func (c *Client) GetChainQuote(ctx context.Context, id string) (int64, error) {
	raw, _, err := c.do(ctx, http.MethodGet, "/v2/swap/chain/"+id+"/quote", nil)
	if err != nil {
		return 0, err
	}
	var wire wireQuote
	if err := json.Unmarshal(raw, &wire); err != nil {
		return 0, &swaperr.SchemaError{Field: "body", Reason: err.Error()}
	}
	return wire.decode()
}

// PostChainQuote calls POST /v2/swap/chain/{id}/quote, accepting a
// previously returned amount.
func (c *Client) PostChainQuote(ctx context.Context, id string, amountSat int64) error {
	body := map[string]interface{}{"amount": amountSat}
	_, _, err := c.do(ctx, http.MethodPost, "/v2/swap/chain/"+id+"/quote", body)
	return err
}

// do issues an HTTP request against path and returns the raw response
// body on a 2xx status. Non-2xx responses are parsed as JSON-error
// when possible and raised as NetworkError with the status code and
// parsed body preserved (spec §4.2).
func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, &swaperr.ValidationError{Field: "body", Reason: err.Error()}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, &swaperr.NetworkError{Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Tracef("%s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &swaperr.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &swaperr.NetworkError{StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &swaperr.NetworkError{
			StatusCode: resp.StatusCode,
			ErrorData:  parseErrorBody(raw),
		}
	}

	return raw, resp.StatusCode, nil
}

// wsURLFromHTTP derives a ws(s):// URL from the client's HTTP base,
// matching scheme (spec §4.2: "ws or wss matching the HTTP scheme").
func wsURLFromHTTP(httpURL string) string {
	switch {
	case len(httpURL) >= 8 && httpURL[:8] == "https://":
		return "wss://" + httpURL[8:]
	case len(httpURL) >= 7 && httpURL[:7] == "http://":
		return "ws://" + httpURL[7:]
	default:
		return httpURL
	}
}

func (c *Client) wsURL() string {
	if c.wsURLOverride != "" {
		return c.wsURLOverride
	}
	return wsURLFromHTTP(c.baseURL) + "/v2/ws"
}
