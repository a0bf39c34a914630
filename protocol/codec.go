package protocol

import "encoding/json"

// Codec encodes outbound requests and decodes inbound responses.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: decode failures should wrap ErrMalformed.
type Codec interface {
	EncodeRequest(req Request) ([]byte, error)
	DecodeResponse(data []byte) (Response, error)
}

// ServiceCodec is the mirror image of Codec used by the remote side and by
// test doubles.
type ServiceCodec interface {
	DecodeRequest(data []byte) (Request, error)
	EncodeResponse(resp Response) ([]byte, error)
}

// JSONCodec implements Codec and ServiceCodec using JSON text.
type JSONCodec struct{}

var (
	_ Codec        = JSONCodec{}
	_ ServiceCodec = JSONCodec{}
)

func (JSONCodec) EncodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

func (JSONCodec) DecodeResponse(data []byte) (Response, error) {
	var resp Response
	err := json.Unmarshal(data, &resp)
	return resp, err
}

func (JSONCodec) DecodeRequest(data []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}

func (JSONCodec) EncodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}
