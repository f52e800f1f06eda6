// package oauthserver runs a short-lived localhost HTTP listener that
// completes the authorization-code OAuth dance: a provider's OAuthURL
// sends the user's browser here, and Wait blocks the CLI command until
// the callback arrives (or the context is cancelled).
package oauthserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
)

// Result is the authorization code and state returned by a successful
// callback. The caller is responsible for exchanging Code via the
// relevant providers.Provider.ExchangeCode.
type Result struct {
	Code  string
	State string
}

// Server is a one-shot OAuth callback listener: it accepts exactly one
// callback request, then is done.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	state      string

	once    sync.Once
	result  chan Result
	errs    chan error

	mu      sync.Mutex
	handled bool
}

// New constructs a Server bound to addr (e.g. "127.0.0.1:8734") that
// expects the given CSRF state token back from the provider.
func New(addr, state string) *Server {
	s := &Server{
		state:  state,
		result: make(chan Result, 1),
		errs:   make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	return s
}

// Start begins listening in the background. Call Wait to block for the
// callback and shut the listener down afterward.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind oauth callback listener: %w", err)
	}
	s.listener = ln

	go s.httpServer.Serve(ln)
	return nil
}

// Addr returns the bound listener's address, useful when addr was
// constructed with a ":0" port to let the OS choose one.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.handled {
		s.mu.Unlock()
		http.Error(w, "callback already processed", http.StatusBadRequest)
		return
	}
	s.handled = true
	s.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != s.state {
		s.sendErr(fmt.Errorf("invalid state parameter"))
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		s.sendErr(fmt.Errorf("authorization failed: %s - %s", errParam, errDesc))
		http.Error(w, "authorization failed", http.StatusBadRequest)
		return
	}

	s.send(Result{Code: code, State: state})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (s *Server) send(r Result) {
	s.once.Do(func() {
		s.result <- r
		close(s.result)
	})
}

func (s *Server) sendErr(err error) {
	s.once.Do(func() {
		s.errs <- err
		close(s.errs)
	})
}

// Wait blocks until the callback fires or ctx is cancelled, then shuts
// the listener down either way.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	defer s.Shutdown(context.Background())

	select {
	case r := <-s.result:
		return r, nil
	case err := <-s.errs:
		return Result{}, err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
