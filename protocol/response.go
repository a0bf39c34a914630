package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when an envelope cannot be encoded or decoded.
var ErrMalformed = errors.New("malformed envelope")

// Type classifies a response.
type Type string

// Response classifications.
const (
	// TypeOK is terminal success. It carries no data.
	TypeOK Type = "ok"

	// TypeError is terminal failure. Data holds the remote message.
	TypeError Type = "error"

	// TypeData is a non-terminal chunk of streamed output.
	TypeData Type = "data"
)

// Terminal reports whether t ends an operation.
func (t Type) Terminal() bool {
	return t == TypeOK || t == TypeError
}

// Valid reports whether t is one of the three known classifications.
func (t Type) Valid() bool {
	switch t {
	case TypeOK, TypeError, TypeData:
		return true
	}
	return false
}

// UnmarshalText rejects classifications outside the closed set.
func (t *Type) UnmarshalText(text []byte) error {
	v := Type(text)
	if !v.Valid() {
		return fmt.Errorf("%w: unknown response type %q", ErrMalformed, string(text))
	}
	*t = v
	return nil
}

// Response is an inbound envelope.
type Response struct {
	// ID is the correlation identifier of the originating request.
	ID string `json:"id"`

	// Type is the response classification.
	Type Type `json:"type"`

	// Data is the chunk for TypeData or the message for TypeError.
	Data string `json:"data,omitempty"`
}

// OK builds a terminal success response.
func OK(id string) Response {
	return Response{ID: id, Type: TypeOK}
}

// Error builds a terminal failure response.
func Error(id, message string) Response {
	return Response{ID: id, Type: TypeError, Data: message}
}

// Data builds a streamed chunk response.
func Data(id, chunk string) Response {
	return Response{ID: id, Type: TypeData, Data: chunk}
}

// UnmarshalJSON decodes a response and requires an ID and a known type.
func (r *Response) UnmarshalJSON(data []byte) error {
	type plain Response
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		if errors.Is(err, ErrMalformed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: response without id", ErrMalformed)
	}
	if p.Type == "" {
		return fmt.Errorf("%w: response %q without type", ErrMalformed, p.ID)
	}
	*r = Response(p)
	return nil
}
