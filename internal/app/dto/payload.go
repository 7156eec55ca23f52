package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// MsgBodyNotObject is returned to clients when the body is not a JSON object
const MsgBodyNotObject = "request body must be a JSON object"

// ErrMalformedBody marks a request body that could not be decoded into a payload
var ErrMalformedBody = errors.New("malformed request body")

// DecodePayload reads a JSON object from r.
// An empty body or a literal null decodes to an empty payload.
// Numbers are kept as json.Number so integers survive unchanged.
func DecodePayload(r io.Reader) (domain.Payload, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.Payload{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload domain.Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode payload: %w: trailing data", ErrMalformedBody)
	}
	if payload == nil {
		payload = domain.Payload{}
	}
	return payload, nil
}
