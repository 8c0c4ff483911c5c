package chromium

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stderrReader yields lines and then fails with err, or blocks forever if
// block is set.
type stderrReader struct {
	r     io.Reader
	err   error
	block bool
}

func newStderrReader(lines []string, err error, block bool) *stderrReader {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l + "\n")
	}
	return &stderrReader{r: strings.NewReader(sb.String()), err: err, block: block}
}

func (r *stderrReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err == io.EOF {
		if r.block {
			select {}
		}
		if r.err != nil {
			return n, r.err
		}
	}
	return n, err
}

func TestParseDevToolsURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name               string
		stderr             []string
		readErr            error
		block              bool
		prematureCtxCancel bool
		prematureCmdDone   bool
		assert             func(t *testing.T, wsURL string, err error)
	}{
		{
			name: "ok/no_error",
			stderr: []string{
				`DevTools listening on ws://127.0.0.1:41315/devtools/browser/d1d3f8eb-b362-4f12-9370-bd25778d0da7`,
			},
			block: true,
			assert: func(t *testing.T, wsURL string, err error) {
				t.Helper()
				require.NoError(t, err)
				assert.Equal(t, "ws://127.0.0.1:41315/devtools/browser/d1d3f8eb-b362-4f12-9370-bd25778d0da7", wsURL)
			},
		},
		{
			name: "ok/non-fatal_error",
			stderr: []string{
				`[23400:23418:1028/115455.877614:ERROR:bus.cc(399)] Failed to ` +
					`connect to the bus: Could not parse server address: ` +
					`Unknown address type (examples of valid types are "tcp" ` +
					`and on UNIX "unix")`,
				"",
				`DevTools listening on ws://127.0.0.1:41315/devtools/browser/d1d3f8eb-b362-4f12-9370-bd25778d0da7`,
			},
			assert: func(t *testing.T, wsURL string, err error) {
				t.Helper()
				require.NoError(t, err)
				assert.Equal(t, "ws://127.0.0.1:41315/devtools/browser/d1d3f8eb-b362-4f12-9370-bd25778d0da7", wsURL)
			},
		},
		{
			name: "err/fatal-eof",
			stderr: []string{
				`[6497:6497:1013/103521.932979:ERROR:ozone_platform_x11` +
					`.cc(247)] Missing X server or $DISPLAY`,
			},
			readErr: io.ErrUnexpectedEOF,
			assert: func(t *testing.T, wsURL string, err error) {
				t.Helper()
				require.Empty(t, wsURL)
				assert.EqualError(t, err, "Missing X server or $DISPLAY")
			},
		},
		{
			name:    "err/fatal-eof-no_stderr",
			readErr: io.ErrUnexpectedEOF,
			assert: func(t *testing.T, wsURL string, err error) {
				t.Helper()
				require.Empty(t, wsURL)
				assert.EqualError(t, err, "unexpected EOF")
			},
		},
		{
			name:   "err/clean-eof",
			stderr: []string{"Opening in existing browser session."},
			assert: func(t *testing.T, wsURL string, err error) {
				t.Helper()
				require.Empty(t, wsURL)
				assert.EqualError(t, err, "browser process ended unexpectedly")
			},
		},
		{
			name:             "err/fatal-premature_cmd_done",
			stderr:           []string{""},
			block:            true,
			prematureCmdDone: true,
			assert: func(t *testing.T, wsURL string, err error) {
				t.Helper()
				require.Empty(t, wsURL)
				assert.EqualError(t, err, "browser process ended unexpectedly")
			},
		},
		{
			name:               "err/fatal-premature_ctx_cancel",
			stderr:             []string{""},
			block:              true,
			prematureCtxCancel: true,
			assert: func(t *testing.T, wsURL string, err error) {
				t.Helper()
				require.Empty(t, wsURL)
				assert.EqualError(t, err, "context canceled")
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmdDone := make(chan struct{})
			cmd := command{done: cmdDone, stderr: newStderrReader(tc.stderr, tc.readErr, tc.block)}

			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)

			timeout := time.Second
			timer := time.NewTimer(timeout)
			t.Cleanup(func() { _ = timer.Stop() })

			var (
				done  = make(chan struct{})
				wsURL string
				err   error
			)

			go func() {
				wsURL, err = parseDevToolsURL(ctx, cmd)
				close(done)
			}()

			if tc.prematureCmdDone {
				time.Sleep(200 * time.Millisecond)
				close(cmdDone)
			}

			if tc.prematureCtxCancel {
				time.Sleep(200 * time.Millisecond)
				cancel()
			}

			select {
			case <-done:
				tc.assert(t, wsURL, err)
			case <-timer.C:
				t.Errorf("test timed out after %s", timeout)
			}
		})
	}
}

func TestStderrError(t *testing.T) {
	t.Parallel()

	msg, ok := stderrError("[1:2:0101/000000.000000:FATAL:zygote_host_impl_linux.cc(127)] No usable sandbox!")
	assert.True(t, ok)
	assert.Equal(t, "No usable sandbox!", msg)

	_, ok = stderrError("[1:2:0101/000000.000000:WARNING:dns_config_service.cc(1)] slow")
	assert.False(t, ok)

	_, ok = stderrError("DevTools listening on ws://127.0.0.1:1/devtools/browser/x")
	assert.False(t, ok)
}
