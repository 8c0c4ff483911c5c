package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	cdps "github.com/chromedp/cdproto/storage"
)

// Storage exposes the CDP Storage domain actions.
type Storage interface {
	GetCookies(ctx context.Context) ([]*network.Cookie, error)
}

var _ Storage = &storage{}

type storage struct {
	exec cdp.Executor
}

// NewStorage returns a new CDP Storage domain wrapper.
func NewStorage(exec cdp.Executor) Storage {
	return &storage{exec}
}

// GetCookies returns every cookie of the default browser context.
func (s *storage) GetCookies(ctx context.Context) ([]*network.Cookie, error) {
	action := cdps.GetCookies()
	cookies, err := action.Do(cdp.WithExecutor(ctx, s.exec))
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", cdps.CommandGetCookies, err)
	}

	return cookies, nil
}
