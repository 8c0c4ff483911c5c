package osext

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/livedesk/cookiegrab/log"
)

// Tests in this file share the package level register and Kill, so they do
// not run in parallel.

func TestForceProcessShutdown(t *testing.T) {
	var (
		mu     sync.Mutex
		killed []int
	)
	origKill := Kill
	Kill = func(pid int) {
		mu.Lock()
		defer mu.Unlock()
		killed = append(killed, pid)
	}
	t.Cleanup(func() { Kill = origKill })

	logger := log.NewNullLogger()
	runA := WithRunID(context.Background(), "read:a.example")
	runB := WithRunID(context.Background(), "read:b.example")
	Register(runA, logger, 1001)
	Register(runB, logger, 1002)
	Register(runB, logger, 1003)
	t.Cleanup(func() {
		for _, pid := range []int{1001, 1002, 1003} {
			Unregister(logger, pid)
		}
	})

	assert.Equal(t, []int{1002, 1003}, Registered(runB))
	assert.Equal(t, []int{1001, 1002, 1003}, Registered(context.Background()))

	ForceProcessShutdown(runA)
	assert.Equal(t, []int{1001}, killed)

	Unregister(logger, 1002)
	killed = nil
	ForceProcessShutdown(context.Background())
	assert.Equal(t, []int{1001, 1003}, killed)
}

func TestRunID(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))
	assert.Equal(t, "x", GetRunID(WithRunID(context.Background(), "x")))
}
