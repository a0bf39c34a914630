// Package fakeremote is an in-process stand-in for the remote playground
// service. It accepts connections from transport/mem, records every request
// and answers through a Responder.
package fakeremote

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/playground/protocol"
	"github.com/jonwraymond/playground/transport"
	"github.com/jonwraymond/playground/transport/mem"
)

// ErrNoConnection is returned by Push when no client is connected.
var ErrNoConnection = errors.New("fakeremote: no connection")

// Responder produces the responses for one request. Returning nil leaves the
// request unanswered; tests can answer later with Push.
type Responder func(req protocol.Request) []protocol.Response

// Server is a fake playground service.
type Server struct {
	l         *mem.Listener
	responder Responder
	codec     protocol.JSONCodec

	mu       sync.Mutex
	requests []protocol.Request
	conns    []*mem.Conn
	received chan protocol.Request

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts a Server answering with responder. A nil responder uses a
// fresh Simulator.
func New(responder Responder) *Server {
	if responder == nil {
		responder = NewSimulator().Respond
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		l:         mem.Listen(),
		responder: responder,
		received:  make(chan protocol.Request, 256),
		cancel:    cancel,
	}
	s.wg.Add(1)
	go s.acceptLoop(ctx)
	return s
}

// Dialer returns a dialer connecting to this server.
func (s *Server) Dialer() transport.Dialer {
	return s.l
}

// URL is a placeholder address for configs that require one.
func (s *Server) URL() string {
	return "mem://fakeremote"
}

// Requests returns every request received so far.
func (s *Server) Requests() []protocol.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Request(nil), s.requests...)
}

// Received delivers each request as it arrives.
func (s *Server) Received() <-chan protocol.Request {
	return s.received
}

// Push sends resp to the most recent connection.
func (s *Server) Push(ctx context.Context, resp protocol.Response) error {
	s.mu.Lock()
	var conn *mem.Conn
	if n := len(s.conns); n > 0 {
		conn = s.conns[n-1]
	}
	s.mu.Unlock()

	if conn == nil {
		return ErrNoConnection
	}
	data, err := s.codec.EncodeResponse(resp)
	if err != nil {
		return err
	}
	return conn.Send(ctx, data)
}

// PushRaw sends raw bytes to the most recent connection.
func (s *Server) PushRaw(ctx context.Context, data []byte) error {
	s.mu.Lock()
	var conn *mem.Conn
	if n := len(s.conns); n > 0 {
		conn = s.conns[n-1]
	}
	s.mu.Unlock()

	if conn == nil {
		return ErrNoConnection
	}
	return conn.Send(ctx, data)
}

// Disconnect drops every client connection, as a crashed service would.
func (s *Server) Disconnect() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// Close stops the server.
func (s *Server) Close() error {
	s.cancel()
	_ = s.l.Close()
	s.Disconnect()
	s.wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.l.Accept(ctx)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(ctx, conn)
	}
}

func (s *Server) serve(ctx context.Context, conn *mem.Conn) {
	defer s.wg.Done()
	for {
		data, err := conn.Receive(ctx)
		if err != nil {
			return
		}
		req, err := s.codec.DecodeRequest(data)
		if err != nil {
			continue
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		select {
		case s.received <- req:
		default:
		}

		for _, resp := range s.responder(req) {
			out, err := s.codec.EncodeResponse(resp)
			if err != nil {
				continue
			}
			if err := conn.Send(ctx, out); err != nil {
				return
			}
		}
	}
}

// Simulator is a Responder with playground semantics: create must come
// before update, run, and remove. Run streams one data response per line of
// the source.
type Simulator struct {
	mu          sync.Mutex
	playgrounds map[string]*playground
}

type playground struct {
	env          protocol.Env
	content      string
	dependencies map[string]string
}

// NewSimulator creates an empty Simulator.
func NewSimulator() *Simulator {
	return &Simulator{playgrounds: make(map[string]*playground)}
}

// Respond implements Responder.
func (s *Simulator) Respond(req protocol.Request) []protocol.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := req.ID
	switch m := req.Message.(type) {
	case protocol.CreateMessage:
		if _, ok := s.playgrounds[m.Name]; ok {
			return []protocol.Response{protocol.Error(id, "playground already exists: "+m.Name)}
		}
		s.playgrounds[m.Name] = &playground{env: m.Env}
		return []protocol.Response{protocol.OK(id)}

	case protocol.UpdateMessage:
		pg, ok := s.playgrounds[m.Name]
		if !ok {
			return []protocol.Response{protocol.Error(id, "no such playground: "+m.Name)}
		}
		pg.content = m.Content
		pg.dependencies = m.Dependencies
		return []protocol.Response{protocol.OK(id)}

	case protocol.RunMessage:
		pg, ok := s.playgrounds[m.Name]
		if !ok {
			return []protocol.Response{protocol.Error(id, "no such playground: "+m.Name)}
		}
		var out []protocol.Response
		for _, dep := range sortedKeys(pg.dependencies) {
			out = append(out, protocol.Data(id, "===> Fetching "+dep+" "+pg.dependencies[dep]))
		}
		for _, line := range strings.Split(pg.content, "\n") {
			if line != "" {
				out = append(out, protocol.Data(id, line))
			}
		}
		return append(out, protocol.OK(id))

	case protocol.RemoveMessage:
		if _, ok := s.playgrounds[m.Name]; !ok {
			return []protocol.Response{protocol.Error(id, "no such playground: "+m.Name)}
		}
		delete(s.playgrounds, m.Name)
		return []protocol.Response{protocol.OK(id)}
	}
	return []protocol.Response{protocol.Error(id, "unsupported operation")}
}

// Exists reports whether a playground is present.
func (s *Simulator) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.playgrounds[name]
	return ok
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
