package cdp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jwriter"
	"github.com/oxtoacart/bpool"

	"github.com/livedesk/cookiegrab/log"
)

const (
	dialRetryDelay = 100 * time.Millisecond
	closeWriteWait = time.Second
)

// connection is a websocket connection to the browser's DevTools endpoint.
type connection struct {
	ws     *websocket.Conn
	wsURL  string
	logger *log.Logger

	writeMu sync.Mutex
	bufs    *bpool.BufferPool

	closeOnce sync.Once
	closeErr  error
}

// dial connects to wsURL, retrying up to attempts times. The returned error
// carries the transport error of the last attempt.
func dial(ctx context.Context, wsURL string, attempts int, logger *log.Logger) (*connection, error) {
	if attempts < 1 {
		attempts = 1
	}
	wd := &websocket.Dialer{
		HandshakeTimeout: time.Second * 10,
		ReadBufferSize:   1 << 20,
		WriteBufferSize:  1 << 20,
		Proxy:            http.ProxyFromEnvironment,
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var ws *websocket.Conn
		ws, _, err = wd.DialContext(ctx, wsURL, http.Header{})
		if err == nil {
			return &connection{
				ws:     ws,
				wsURL:  wsURL,
				logger: logger,
				bufs:   bpool.NewBufferPool(8),
			}, nil
		}
		logger.Debugf("connection:dial", "wsURL:%q attempt:%d/%d err:%v", wsURL, attempt, attempts, err)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("dialing %q: %w", wsURL, ctx.Err())
		case <-time.After(time.Duration(attempt) * dialRetryDelay):
		}
	}

	return nil, fmt.Errorf("dialing %q after %d attempts: %w", wsURL, attempts, err)
}

func (c *connection) readMessage() (*cdproto.Message, error) {
	_, buf, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading from %q: %w", c.wsURL, err)
	}

	var msg cdproto.Message
	if err := easyjson.Unmarshal(buf, &msg); err != nil {
		return nil, fmt.Errorf("decoding CDP message: %w", err)
	}
	return &msg, nil
}

func (c *connection) writeMessage(msg *cdproto.Message) error {
	var encoder jwriter.Writer
	msg.MarshalEasyJSON(&encoder)
	if err := encoder.Error; err != nil {
		return fmt.Errorf("encoding CDP message %q: %w", msg.Method, err)
	}

	buf := c.bufs.Get()
	defer c.bufs.Put(buf)
	if _, err := encoder.DumpTo(buf); err != nil {
		return fmt.Errorf("encoding CDP message %q: %w", msg.Method, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
		return fmt.Errorf("writing CDP message %q: %w", msg.Method, err)
	}
	return nil
}

// close sends a close frame, ignoring failures, and closes the socket.
func (c *connection) close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteWait),
		)
		c.writeMu.Unlock()
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
