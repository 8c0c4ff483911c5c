package osext

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/livedesk/cookiegrab/log"
)

type processState struct {
	pid   int
	runID string
}

var (
	processRegister   = map[int]processState{} //nolint:gochecknoglobals
	processRegisterMu = sync.Mutex{}           //nolint:gochecknoglobals
)

// Register records a running browser process under the run ID found in ctx.
func Register(ctx context.Context, logger *log.Logger, pid int) {
	processRegisterMu.Lock()
	defer processRegisterMu.Unlock()

	rID := GetRunID(ctx)
	logger.Debugf("Process:register", "registered process pid:%d run:%q", pid, rID)

	processRegister[pid] = processState{pid: pid, runID: rID}
}

// Unregister forgets a process once it has exited.
func Unregister(logger *log.Logger, pid int) {
	processRegisterMu.Lock()
	defer processRegisterMu.Unlock()

	logger.Debugf("Process:unregister", "unregistered process pid:%d", pid)

	delete(processRegister, pid)
}

// Registered returns the PIDs of processes started under the run ID in ctx,
// or every registered PID if ctx carries none.
func Registered(ctx context.Context) []int {
	processRegisterMu.Lock()
	defer processRegisterMu.Unlock()

	rID := GetRunID(ctx)
	pids := make([]int, 0, len(processRegister))
	for pid, st := range processRegister {
		if rID != "" && st.runID != rID {
			continue
		}
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// ForceProcessShutdown kills the registered browser processes of the run ID
// in ctx, or all of them if ctx carries none. It is meant for an
// interrupted program that cannot go through the normal teardown.
func ForceProcessShutdown(ctx context.Context) {
	for _, pid := range Registered(ctx) {
		Kill(pid)
	}
}

// Kill will look for and kill the process with the
// given pid. It is a variable so that tests can
// observe kills without touching real processes.
var Kill = func(pid int) { //nolint:gochecknoglobals
	p, err := os.FindProcess(pid)
	if err != nil {
		// optimistically continue and don't kill the process
		return
	}
	// no need to check the error since we're already dying.
	_ = p.Kill()
	_ = p.Release()
}
