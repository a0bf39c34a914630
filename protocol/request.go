package protocol

import (
	"encoding/json"
	"fmt"
)

// Operation names the kind of request carried by a Message.
type Operation string

// Operations understood by the remote service.
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpRun    Operation = "run"
	OpRemove Operation = "remove"
)

// Env is the language environment of a playground.
type Env string

// Supported playground environments.
const (
	EnvErlang Env = "erlang"
	EnvElixir Env = "elixir"
)

// Envs lists every supported environment.
var Envs = []Env{EnvErlang, EnvElixir}

// Valid reports whether e is a supported environment.
func (e Env) Valid() bool {
	switch e {
	case EnvErlang, EnvElixir:
		return true
	}
	return false
}

// ParseEnv converts a string into an Env.
func ParseEnv(s string) (Env, error) {
	e := Env(s)
	if !e.Valid() {
		return "", fmt.Errorf("%w: unsupported env %q", ErrMalformed, s)
	}
	return e, nil
}

// Message is the operation-specific body of a Request.
//
// The set of implementations is closed: CreateMessage, UpdateMessage,
// RunMessage and RemoveMessage.
type Message interface {
	// Operation returns the request kind.
	Operation() Operation

	// Target returns the playground name the message addresses.
	Target() string

	payload() any
}

// CreateMessage asks the service to create a playground.
type CreateMessage struct {
	Name string `json:"name"`
	Env  Env    `json:"env"`
}

func (m CreateMessage) Operation() Operation { return OpCreate }
func (m CreateMessage) Target() string       { return m.Name }
func (m CreateMessage) payload() any         { return m }

// UpdateMessage replaces a playground's source and dependencies.
type UpdateMessage struct {
	Name         string            `json:"name"`
	Content      string            `json:"content"`
	Dependencies map[string]string `json:"dependencies"`
}

func (m UpdateMessage) Operation() Operation { return OpUpdate }
func (m UpdateMessage) Target() string       { return m.Name }

func (m UpdateMessage) payload() any {
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	return m
}

// RunMessage runs a playground. Its payload is the bare name.
type RunMessage struct {
	Name string
}

func (m RunMessage) Operation() Operation { return OpRun }
func (m RunMessage) Target() string       { return m.Name }
func (m RunMessage) payload() any         { return m.Name }

// RemoveMessage deletes a playground. Its payload is the bare name.
type RemoveMessage struct {
	Name string
}

func (m RemoveMessage) Operation() Operation { return OpRemove }
func (m RemoveMessage) Target() string       { return m.Name }
func (m RemoveMessage) payload() any         { return m.Name }

// Request is an outbound envelope.
type Request struct {
	// ID is the correlation identifier echoed by every response.
	ID string

	// Message is the operation to perform.
	Message Message
}

type wireRequest struct {
	ID      string                        `json:"id"`
	Message map[Operation]json.RawMessage `json:"message"`
}

// MarshalJSON encodes the request as {"id":..., "message":{<op>: <payload>}}.
func (r Request) MarshalJSON() ([]byte, error) {
	if r.Message == nil {
		return nil, fmt.Errorf("%w: request %q has no message", ErrMalformed, r.ID)
	}
	body, err := json.Marshal(r.Message.payload())
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRequest{
		ID:      r.ID,
		Message: map[Operation]json.RawMessage{r.Message.Operation(): body},
	})
}

// UnmarshalJSON decodes a request envelope. It is used by service-side code
// and test doubles; clients only ever encode requests.
func (r *Request) UnmarshalJSON(data []byte) error {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(w.Message) != 1 {
		return fmt.Errorf("%w: request must carry exactly one operation, got %d", ErrMalformed, len(w.Message))
	}

	var msg Message
	for op, raw := range w.Message {
		switch op {
		case OpCreate:
			var m CreateMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				return fmt.Errorf("%w: create: %v", ErrMalformed, err)
			}
			msg = m
		case OpUpdate:
			var m UpdateMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				return fmt.Errorf("%w: update: %v", ErrMalformed, err)
			}
			msg = m
		case OpRun, OpRemove:
			var name string
			if err := json.Unmarshal(raw, &name); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrMalformed, op, err)
			}
			if op == OpRun {
				msg = RunMessage{Name: name}
			} else {
				msg = RemoveMessage{Name: name}
			}
		default:
			return fmt.Errorf("%w: unknown operation %q", ErrMalformed, op)
		}
	}

	r.ID = w.ID
	r.Message = msg
	return nil
}
