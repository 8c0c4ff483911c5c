/*
 *
 * cookiegrab - Chrome cookie extraction over the DevTools protocol
 * Copyright (C) 2021 The cookiegrab Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package chromium

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/network"

	"github.com/livedesk/cookiegrab/cdp"
	"github.com/livedesk/cookiegrab/log"
)

var errCookiesEnumerated = errors.New("cookies were already enumerated in this session")

// LaunchError is returned when the browser could not be started or its
// DevTools endpoint could not be reached.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return "launching browser: " + e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned when a CDP command fails.
type ProtocolError struct {
	Method string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Session owns one headless browser process and its CDP connection. Launch
// acquires both and Close releases them; Close must be called on every
// Session returned by Launch.
type Session struct {
	opts   *LaunchOptions
	logger *log.Logger

	proc   *process
	client *cdp.Client

	// Event notifications are drained until the session closes, otherwise
	// the CDP receive loop stalls.
	drainCancel context.CancelFunc
	drained     chan struct{}

	enumerated int32
	closeOnce  sync.Once
}

// Launch starts the browser described by opts and connects to it. On error
// nothing is left running.
func Launch(ctx context.Context, opts *LaunchOptions, logger *log.Logger) (_ *Session, rerr error) {
	if err := opts.Validate(); err != nil {
		return nil, &LaunchError{Err: err}
	}

	lctx := ctx
	if opts.LaunchTimeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, opts.LaunchTimeout)
		defer cancel()
	}

	proc, wsURL, err := startProcess(lctx, opts, logger)
	if err != nil {
		return nil, &LaunchError{Err: err}
	}

	s := &Session{
		opts:   opts,
		logger: logger,
		proc:   proc,
		client: cdp.NewClient(logger),
	}
	defer func() {
		if rerr != nil {
			s.Close()
		}
	}()

	if err := s.client.Connect(lctx, wsURL, opts.ConnectAttempts); err != nil {
		return nil, &LaunchError{Err: fmt.Errorf("connecting to browser DevTools URL: %w", err)}
	}
	s.drainEvents()

	logger.Debugf("Session:Launch", "pid:%d profile:%q wsURL:%q", s.Pid(), opts.ProfileDirectory, wsURL)

	return s, nil
}

func (s *Session) drainEvents() {
	var ctx context.Context
	ctx, s.drainCancel = context.WithCancel(context.Background())
	s.drained = make(chan struct{})
	events := s.client.Events()

	go func() {
		defer close(s.drained)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				s.logger.Tracef("Session:drainEvents", "pid:%d method:%q", s.Pid(), evt.Name)
			}
		}
	}()
}

// Pid returns the browser process ID.
func (s *Session) Pid() int {
	return s.proc.pid()
}

// Cookies enumerates every cookie the browser holds. It may be called once
// per session.
func (s *Session) Cookies(ctx context.Context) ([]*network.Cookie, error) {
	const method = "Storage.getCookies"

	if !atomic.CompareAndSwapInt32(&s.enumerated, 0, 1) {
		return nil, &ProtocolError{Method: method, Err: errCookiesEnumerated}
	}
	if s.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.CommandTimeout)
		defer cancel()
	}

	cookies, err := s.client.Storage.GetCookies(ctx)
	if err != nil {
		return nil, &ProtocolError{Method: method, Err: err}
	}
	s.logger.Debugf("Session:Cookies", "pid:%d cookies:%d", s.Pid(), len(cookies))

	return cookies, nil
}

// Close shuts the browser down. New CDP calls are refused, the browser is
// asked to quit, the connection is closed and the event drain is stopped.
// A browser that does not exit within the graceful timeout is killed. Errors
// are logged and otherwise ignored.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Debugf("Session:Close", "pid:%d", s.Pid())

		connected := s.drainCancel != nil
		s.client.StopAccepting()
		if connected {
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.GracefulTimeout)
			if err := s.client.Browser.Close(ctx); err != nil {
				s.logger.Debugf("Session:Close", "pid:%d closing the browser: %v", s.Pid(), err)
			}
			cancel()
		}
		if err := s.client.Disconnect(); err != nil {
			s.logger.Debugf("Session:Close", "pid:%d disconnecting: %v", s.Pid(), err)
		}
		if connected {
			s.drainCancel()
			<-s.drained
			s.proc.waitOrKill(s.opts.GracefulTimeout)
			return
		}
		s.proc.kill()
	})
}

// ExtractAllCookies launches a headless browser with opts, enumerates all of
// its cookies and shuts it down again.
func ExtractAllCookies(ctx context.Context, opts *LaunchOptions, logger *log.Logger) ([]*network.Cookie, error) {
	s, err := Launch(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.Cookies(ctx)
}
