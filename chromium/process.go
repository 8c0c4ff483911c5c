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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/livedesk/cookiegrab/log"
	"github.com/livedesk/cookiegrab/osext"
)

const (
	devToolsPrefix = "DevTools listening on "

	// exitReportWait is how long a finished stderr scan may lag behind the
	// process exit notification.
	exitReportWait = 100 * time.Millisecond
)

var errProcessEnded = errors.New("browser process ended unexpectedly")

var execCommand = exec.Command //nolint:gochecknoglobals

// process is a running browser.
type process struct {
	cmd    *exec.Cmd
	done   chan struct{}
	logger *log.Logger

	killOnce sync.Once
}

// command is what parseDevToolsURL needs from a started process.
type command struct {
	done   <-chan struct{}
	stderr io.Reader
}

// startProcess starts the browser and waits until it reports its DevTools
// websocket URL. The process is killed if that does not happen.
func startProcess(ctx context.Context, opts *LaunchOptions, logger *log.Logger) (*process, string, error) {
	cmd := execCommand(opts.ExecutablePath, opts.Args()...)
	killAfterParent(cmd)

	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	// cmd.Wait must not close stderr before its last lines are read.
	stderr, stderrW, err := os.Pipe()
	if err != nil {
		return nil, "", fmt.Errorf("%w", err)
	}
	cmd.Stderr = stderrW

	// We must start the cmd before calling cmd.Wait, as otherwise the two
	// can run into a data race.
	err = cmd.Start()
	_ = stderrW.Close()
	if err != nil {
		_ = stderr.Close()
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file does not exist: %s", opts.ExecutablePath)
		}
		return nil, "", fmt.Errorf("%w", err)
	}

	p := &process{
		cmd:    cmd,
		done:   make(chan struct{}),
		logger: logger,
	}
	pid := cmd.Process.Pid
	osext.Register(ctx, logger, pid)

	go func() {
		defer func() {
			osext.Unregister(logger, pid)
			close(p.done)
		}()

		if err := cmd.Wait(); err != nil {
			logger.Debugf("browser", "process with PID %d ended: %v", pid, err)
		}
	}()

	wsURL, err := parseDevToolsURL(ctx, command{done: p.done, stderr: stderr})
	if err != nil {
		p.kill()
		return nil, "", err
	}
	logger.Debugf("browser", "process with PID %d listening on %q", pid, wsURL)

	return p, wsURL, nil
}

func (p *process) pid() int {
	return p.cmd.Process.Pid
}

// kill terminates the process and waits until it has been reaped.
func (p *process) kill() {
	p.killOnce.Do(func() {
		p.logger.Debugf("Process:kill", "pid:%d", p.pid())
		_ = p.cmd.Process.Kill()
	})
	<-p.done
}

// waitOrKill waits up to grace for the process to exit on its own.
func (p *process) waitOrKill(grace time.Duration) {
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return
	case <-timer.C:
	}
	p.logger.Debugf("Process:waitOrKill", "pid:%d still running after %s", p.pid(), grace)
	p.kill()
}

// parseDevToolsURL reads the browser's stderr until it announces its DevTools
// websocket URL. The rest of stderr is discarded so the browser never blocks
// writing to it.
func parseDevToolsURL(ctx context.Context, cmd command) (string, error) {
	type result struct {
		devToolsURL string
		err         error
	}
	c := make(chan result, 1)
	go func() {
		var (
			scanner = bufio.NewScanner(cmd.stderr)
			r       result
			lastErr string
		)
		for scanner.Scan() {
			line := scanner.Text()
			if s := strings.TrimPrefix(line, devToolsPrefix); s != line {
				r.devToolsURL = strings.TrimSpace(s)
				break
			}
			if msg, ok := stderrError(line); ok {
				lastErr = msg
			}
		}
		if r.devToolsURL == "" {
			switch err := scanner.Err(); {
			case lastErr != "":
				r.err = errors.New(lastErr)
			case err != nil:
				r.err = err
			default:
				r.err = errProcessEnded
			}
		}
		c <- r
		if r.err == nil {
			_, _ = io.Copy(ioutil.Discard, cmd.stderr)
		}
		if closer, ok := cmd.stderr.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	select {
	case r := <-c:
		return r.devToolsURL, r.err
	case <-cmd.done:
		// Prefer the reason the browser printed before it exited.
		select {
		case r := <-c:
			if r.err != nil {
				return "", r.err
			}
		case <-time.After(exitReportWait):
		}
		return "", errProcessEnded
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// stderrError extracts the message of a Chrome ERROR or FATAL log line such as
// "[6497:6497:1013/103521.932979:ERROR:ozone_platform_x11.cc(247)] Missing X server".
func stderrError(line string) (string, bool) {
	if !strings.HasPrefix(line, "[") {
		return "", false
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return "", false
	}
	header := line[:end]
	if !strings.Contains(header, ":ERROR:") && !strings.Contains(header, ":FATAL:") {
		return "", false
	}
	return strings.TrimSpace(line[end+2:]), true
}
