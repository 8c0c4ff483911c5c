// Package cdp is a minimal Chrome DevTools Protocol client over a websocket.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/cdp"
	"github.com/mailru/easyjson"

	"github.com/livedesk/cookiegrab/cdp/domains"
	"github.com/livedesk/cookiegrab/log"
)

var _ cdp.Executor = &Client{}

var (
	// ErrClosing is returned for calls issued after StopAccepting.
	ErrClosing = errors.New("CDP client is closing")
	// ErrNotConnected is returned for calls issued before Connect.
	ErrNotConnected = errors.New("CDP client is not connected")
)

// Client manages CDP communication with the browser.
type Client struct {
	logger *log.Logger

	// Browser commands bypass the closing gate so that teardown can still
	// ask the browser to quit.
	Browser domains.Browser
	Storage domains.Storage

	conn    *connection
	wsURL   string
	msgID   int64
	closing int32

	msgSubsMu sync.Mutex
	msgSubs   map[int64]chan *cdproto.Message

	events chan *Event
	stop   chan struct{}
	done   chan struct{}

	stopOnce sync.Once
	errMu    sync.Mutex
	err      error
}

// NewClient returns a new Client that is unusable until a CDP connection is
// established with Connect().
func NewClient(logger *log.Logger) *Client {
	c := &Client{
		logger:  logger,
		msgSubs: make(map[int64]chan *cdproto.Message),
		events:  make(chan *Event),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.Browser = domains.NewBrowser(teardownExecutor{c})
	c.Storage = domains.NewStorage(c)

	return c
}

// Connect to the browser that exposes a CDP API at wsURL, dialing at most
// attempts times.
func (c *Client) Connect(ctx context.Context, wsURL string, attempts int) (err error) {
	if c.wsURL != "" {
		return fmt.Errorf("CDP connection already established to %q", c.wsURL)
	}

	if c.conn, err = dial(ctx, wsURL, attempts, c.logger); err != nil {
		return err
	}
	c.logger.Debugf("cdp", "established CDP connection to %q", wsURL)
	c.wsURL = wsURL

	go c.recvLoop()

	return nil
}

// Events returns the channel every CDP event notification is delivered on.
// The channel is unbuffered: the receive loop blocks until each event is
// taken, so a connected client must always have a reader. It is closed when
// the receive loop exits.
func (c *Client) Events() <-chan *Event {
	return c.events
}

// StopAccepting makes every later Execute call fail with ErrClosing.
func (c *Client) StopAccepting() {
	atomic.StoreInt32(&c.closing, 1)
}

// Disconnect closes the connection and waits for the receive loop to exit.
func (c *Client) Disconnect() error {
	c.StopAccepting()
	c.stopOnce.Do(func() { close(c.stop) })
	if c.conn == nil {
		return nil
	}
	err := c.conn.close()
	<-c.done
	return err
}

// Execute implements cdp.Executor and performs a synchronous send and
// receive.
func (c *Client) Execute(ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler) error {
	if c.isClosing() {
		return ErrClosing
	}
	return c.execute(ctx, method, params, res)
}

func (c *Client) execute(ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	c.logger.Debugf("Client:Execute", "wsURL:%q method:%q", c.wsURL, method)

	id := atomic.AddInt64(&c.msgID, 1)
	recvCh := make(chan *cdproto.Message, 1)
	c.msgSubsMu.Lock()
	c.msgSubs[id] = recvCh
	c.msgSubsMu.Unlock()
	defer func() {
		c.msgSubsMu.Lock()
		delete(c.msgSubs, id)
		c.msgSubsMu.Unlock()
	}()

	var buf []byte
	if params != nil {
		var err error
		buf, err = easyjson.Marshal(params)
		if err != nil {
			return fmt.Errorf("encoding %q params: %w", method, err)
		}
	}
	msg := &cdproto.Message{
		ID:     id,
		Method: cdproto.MethodType(method),
		Params: buf,
	}
	if err := c.conn.writeMessage(msg); err != nil {
		return err
	}

	select {
	case msg := <-recvCh:
		switch {
		case msg.Error != nil:
			return msg.Error
		case res != nil:
			return easyjson.Unmarshal(msg.Result, res)
		}
		return nil
	case <-c.done:
		return c.lostConnectionErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) recvLoop() {
	defer func() {
		close(c.events)
		close(c.done)
	}()

	for {
		msg, err := c.conn.readMessage()
		if err != nil {
			if c.isClosing() {
				c.logger.Debugf("Client:recvLoop", "wsURL:%q closed: %v", c.wsURL, err)
			} else {
				c.logger.Errorf("Client:recvLoop", "wsURL:%q ioErr:%v", c.wsURL, err)
			}
			c.setErr(err)
			return
		}

		switch {
		case msg.Method != "":
			evt := &Event{Name: msg.Method, SessionID: string(msg.SessionID), Params: msg.Params}
			select {
			case c.events <- evt:
			case <-c.stop:
				c.setErr(ErrClosing)
				return
			}
		case msg.ID > 0:
			c.msgSubsMu.Lock()
			ch, ok := c.msgSubs[msg.ID]
			delete(c.msgSubs, msg.ID)
			c.msgSubsMu.Unlock()
			if !ok {
				c.logger.Debugf("Client:recvLoop", "wsURL:%q no caller waiting for message ID %d", c.wsURL, msg.ID)
				continue
			}
			ch <- msg
		default:
			c.logger.Errorf("Client:recvLoop", "ignoring malformed incoming CDP message (missing id or method): %#v", msg)
		}
	}
}

// isClosing reports whether teardown has begun. The browser may drop the
// socket as soon as it answers Browser.close, before Disconnect runs.
func (c *Client) isClosing() bool {
	select {
	case <-c.stop:
		return true
	default:
	}
	return atomic.LoadInt32(&c.closing) == 1
}

func (c *Client) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *Client) lostConnectionErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		return errors.New("CDP connection lost")
	}
	return fmt.Errorf("CDP connection lost: %w", c.err)
}

// teardownExecutor executes commands even after StopAccepting.
type teardownExecutor struct {
	c *Client
}

func (e teardownExecutor) Execute(ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler) error {
	return e.c.execute(ctx, method, params, res)
}
