package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// ErrListen is returned by servers built with ListenFailingServer.
var ErrListen = errors.New("listen failure")

// StubHTTPServer satisfies the server package's listener interface. Calls
// may arrive from the Run goroutine, so counters are read through methods.
type StubHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error
	// Unblock, when non-nil, makes Shutdown wait for it or for ctx.
	Unblock chan struct{}

	mu        sync.Mutex
	listens   int
	shutdowns int
}

// ListenFailingServer fails immediately on ListenAndServe.
func ListenFailingServer() *StubHTTPServer {
	return &StubHTTPServer{AddrVal: ":0", ListenErr: ErrListen}
}

// ClosedServer reports http.ErrServerClosed, as a normally stopped listener does.
func ClosedServer() *StubHTTPServer {
	return &StubHTTPServer{AddrVal: ":0", ListenErr: http.ErrServerClosed}
}

// BlockingServer holds Shutdown open until Unblock is closed.
func BlockingServer() *StubHTTPServer {
	return &StubHTTPServer{AddrVal: ":0", Unblock: make(chan struct{})}
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.mu.Lock()
	s.listens++
	s.mu.Unlock()
	return s.ListenErr
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdowns++
	s.mu.Unlock()
	if s.Unblock != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Unblock:
		}
	}
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string { return s.AddrVal }

func (s *StubHTTPServer) Handler() http.Handler {
	if s.HandlerVal == nil {
		return http.NotFoundHandler()
	}
	return s.HandlerVal
}

// ListenCalls reports how many times ListenAndServe ran.
func (s *StubHTTPServer) ListenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listens
}

// ShutdownCalls reports how many times Shutdown ran.
func (s *StubHTTPServer) ShutdownCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdowns
}
