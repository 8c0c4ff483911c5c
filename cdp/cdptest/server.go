// Package cdptest provides a fake DevTools websocket endpoint for tests.
package cdptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
)

const browserPath = "/devtools/browser/8b3a7c1e-1f0d-4c39-9a55-2c47e1d0a001"

// Cookie is the subset of a CDP Network.Cookie the fake endpoint reports.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	Session  bool    `json:"session"`
}

// Server is a fake browser DevTools endpoint. It answers Storage.getCookies
// with Cookies and Browser.close by closing the connection.
type Server struct {
	srv *httptest.Server

	// Cookies is the cookie jar returned for Storage.getCookies.
	Cookies []Cookie
	// GetCookiesError makes Storage.getCookies fail with this message.
	GetCookiesError string
	// EventsPerCall is the number of event notifications sent ahead of
	// every response.
	EventsPerCall int
	// ResetConnections is the number of connection attempts that are
	// dropped before the websocket handshake.
	ResetConnections int32

	attempts int32

	mu        sync.Mutex
	methods   []string
	closed    chan struct{}
	closeOnce sync.Once
}

// NewServer starts a fake endpoint that is stopped when the test ends.
func NewServer(tb testing.TB, configure func(*Server)) *Server {
	tb.Helper()

	s := &Server{closed: make(chan struct{})}
	if configure != nil {
		configure(s)
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	tb.Cleanup(s.srv.Close)

	return s
}

// URL returns the websocket URL a browser would print on startup.
func (s *Server) URL() string {
	return "ws://" + s.srv.Listener.Addr().String() + browserPath
}

// Attempts returns the number of connection attempts seen so far.
func (s *Server) Attempts() int {
	return int(atomic.LoadInt32(&s.attempts))
}

// Methods returns the CDP methods received, in order.
func (s *Server) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methods...)
}

// BrowserClosed is closed once Browser.close was received.
func (s *Server) BrowserClosed() <-chan struct{} {
	return s.closed
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt32(&s.attempts, 1)
	if n <= s.ResetConnections {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "hijacking unsupported", http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return
	}

	var upgrader websocket.Upgrader
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req struct {
			ID     int64           `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(buf, &req); err != nil {
			return
		}
		s.mu.Lock()
		s.methods = append(s.methods, req.Method)
		s.mu.Unlock()

		for i := 0; i < s.EventsPerCall; i++ {
			evt := fmt.Sprintf(`{"method":"Target.targetInfoChanged","params":{"seq":%d}}`, i)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(evt)); err != nil {
				return
			}
		}

		switch req.Method {
		case "Storage.getCookies":
			if s.GetCookiesError != "" {
				s.writeError(conn, req.ID, s.GetCookiesError)
				continue
			}
			s.writeResult(conn, req.ID, struct {
				Cookies []Cookie `json:"cookies"`
			}{s.Cookies})
		case "Browser.close":
			s.writeResult(conn, req.ID, struct{}{})
			s.closeOnce.Do(func() { close(s.closed) })
			return
		default:
			s.writeError(conn, req.ID, "'"+req.Method+"' wasn't found")
		}
	}
}

func (s *Server) writeResult(conn *websocket.Conn, id int64, result interface{}) {
	res, err := json.Marshal(result)
	if err != nil {
		panic(err)
	}
	msg := fmt.Sprintf(`{"id":%d,"result":%s}`, id, res)
	_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (s *Server) writeError(conn *websocket.Conn, id int64, message string) {
	msg := fmt.Sprintf(`{"id":%d,"error":{"code":-32000,"message":%q}}`, id, strings.TrimSpace(message))
	_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
}
