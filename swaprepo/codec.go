package swaprepo

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/arkade-os/boltz-swap-go/swap"
)

// record is the on-disk shape of a single swap.Swap: a flat JSON
// object wide enough to hold every Request/Response variant, fields
// left empty/zero when not applicable to swap.Type. Grounded on
// channeldb's practice of hand-rolling its own wire encoding rather
// than leaning on an ORM -- here the "wire" is JSON, not TLV, so
// encoding/json plays that role directly.
type record struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	CreatedAt      int64   `json:"createdAt"`
	Preimage       string  `json:"preimage,omitempty"`
	EphemeralKey   string  `json:"ephemeralKey,omitempty"`
	Direction      string  `json:"direction,omitempty"`
	FeeSatsPerByte float64 `json:"feeSatsPerByte,omitempty"`
	ToAddress      string  `json:"toAddress,omitempty"`

	Request  json.RawMessage `json:"request,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

func encodeSwap(s *swap.Swap) (*record, error) {
	r := &record{
		ID:             s.ID,
		Type:           string(s.Type),
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		Direction:      string(s.Direction),
		FeeSatsPerByte: s.FeeSatsPerByte,
		ToAddress:      s.ToAddress,
	}
	if len(s.Preimage) > 0 {
		r.Preimage = hex.EncodeToString(s.Preimage)
	}
	if len(s.EphemeralKey) > 0 {
		r.EphemeralKey = base64.StdEncoding.EncodeToString(s.EphemeralKey)
	}

	if s.Request != nil {
		raw, err := json.Marshal(s.Request)
		if err != nil {
			return nil, err
		}
		r.Request = raw
	}
	if s.Response != nil {
		raw, err := json.Marshal(s.Response)
		if err != nil {
			return nil, err
		}
		r.Response = raw
	}
	return r, nil
}

func decodeSwap(r *record) (*swap.Swap, error) {
	s := &swap.Swap{
		ID:             r.ID,
		Type:           swap.Type(r.Type),
		Status:         swap.Status(r.Status),
		CreatedAt:      r.CreatedAt,
		Direction:      swap.Direction(r.Direction),
		FeeSatsPerByte: r.FeeSatsPerByte,
		ToAddress:      r.ToAddress,
	}
	if r.Preimage != "" {
		preimage, err := hex.DecodeString(r.Preimage)
		if err != nil {
			return nil, fmt.Errorf("decoding preimage: %w", err)
		}
		s.Preimage = preimage
	}
	if r.EphemeralKey != "" {
		key, err := base64.StdEncoding.DecodeString(r.EphemeralKey)
		if err != nil {
			return nil, fmt.Errorf("decoding ephemeral key: %w", err)
		}
		s.EphemeralKey = key
	}

	req, err := decodeRequest(s.Type, r.Request)
	if err != nil {
		return nil, err
	}
	s.Request = req

	resp, err := decodeResponse(s.Type, r.Response)
	if err != nil {
		return nil, err
	}
	s.Response = resp

	return s, nil
}

func decodeRequest(t swap.Type, raw json.RawMessage) (swap.Request, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch t {
	case swap.TypeSubmarine:
		var req swap.SubmarineRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		return &req, nil
	case swap.TypeReverse:
		var req swap.ReverseRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		return &req, nil
	case swap.TypeChain:
		var req swap.ChainRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		return &req, nil
	default:
		return nil, fmt.Errorf("unknown swap type %q", t)
	}
}

func decodeResponse(t swap.Type, raw json.RawMessage) (swap.Response, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch t {
	case swap.TypeSubmarine:
		var resp swap.SubmarineResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	case swap.TypeReverse:
		var resp swap.ReverseResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	case swap.TypeChain:
		var resp swap.ChainResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	default:
		return nil, fmt.Errorf("unknown swap type %q", t)
	}
}
