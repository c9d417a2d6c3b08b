package gateway

import (
	"encoding/json"

	"libris/internal/errors"
)

// envelope is the wrapping convention some endpoints use. Others return the
// payload bare; Unwrap handles both.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Unwrap strips the {success, message, data} envelope when present, returning
// the payload unchanged otherwise.
func Unwrap(raw json.RawMessage) json.RawMessage {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil && len(env.Data) > 0 {
		return env.Data
	}

	return raw
}

// Decode unwraps a possibly enveloped response and decodes the payload into T.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(Unwrap(raw), &out); err != nil {
		return out, errors.Wrap(err, "decode response payload")
	}

	return out, nil
}

// DecodeField unwraps a response and decodes a named field of the payload into
// T, falling back to the whole payload when the field is absent. Endpoints are
// inconsistent about nesting collections (e.g. {data: {books: [...]}} versus
// {data: [...]}), and this absorbs both.
func DecodeField[T any](raw json.RawMessage, field string) (T, error) {
	var out T
	payload := Unwrap(raw)

	var byField map[string]json.RawMessage
	if err := json.Unmarshal(payload, &byField); err == nil {
		if inner, ok := byField[field]; ok {
			if err := json.Unmarshal(inner, &out); err != nil {
				return out, errors.Wrapf(err, "decode field %q", field)
			}

			return out, nil
		}
	}

	if err := json.Unmarshal(payload, &out); err != nil {
		return out, errors.Wrap(err, "decode response payload")
	}

	return out, nil
}
