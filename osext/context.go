// Package osext tracks the browser processes started by cookiegrab so they
// can be killed when the program is interrupted.
package osext

import (
	"context"
)

type ctxKey int

const (
	ctxKeyRunID ctxKey = iota
)

// WithRunID saves the ID of the current extraction run to the context.
func WithRunID(ctx context.Context, rID string) context.Context {
	return context.WithValue(ctx, ctxKeyRunID, rID)
}

// GetRunID returns the extraction run ID from the context.
func GetRunID(ctx context.Context) string {
	rID, _ := ctx.Value(ctxKeyRunID).(string)
	return rID
}
