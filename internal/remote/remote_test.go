package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptySnapshot = `{"generated_at_unix_s":1756000000,"host":"local","sessions":[],"host_errors":{},"warnings":[]}`

const oneRowSnapshot = `{
  "generated_at_unix_s": 1756000000,
  "host": "local",
  "sessions": [
    {
      "host": "local",
      "session_id": "aaaaaaaa-1111-4222-8333-444455556666",
      "pids": [42],
      "tty": "/dev/ttys003",
      "title": null,
      "label": null,
      "cwd": "/home/dev/proj",
      "repo_root": null,
      "branch": null,
      "commit": null,
      "lineage": {"source": null, "parent": null, "depth": null, "forked_from": null},
      "status": "working",
      "last_activity_unix_s": 1755999990,
      "age_s": 10,
      "log_path": "/home/dev/.codex/sessions/rollout-aaaaaaaa-1111-4222-8333-444455556666.jsonl",
      "tmux": null,
      "debug": null
    }
  ],
  "host_errors": {"local": "titles unreadable"},
  "warnings": ["tail parse failed: truncated line"]
}`

// stubSSH installs a fake ssh script on PATH and returns the collector under test.
func stubSSH(t *testing.T, script string) *Collector {
	t.Helper()
	stubDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stubDir, "ssh"), []byte(script), 0o755))
	t.Setenv("PATH", stubDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return New()
}

func TestFetch(t *testing.T) {
	t.Run("parses and rewrites the remote snapshot", func(t *testing.T) {
		c := stubSSH(t, "#!/bin/sh\ncat <<'JSON'\n"+oneRowSnapshot+"\nJSON\n")

		snap, err := c.Fetch(context.Background(), "devbox", false)
		require.NoError(t, err)
		require.NotNil(t, snap)

		assert.Equal(t, "devbox", snap.Host)
		require.Len(t, snap.Sessions, 1)
		assert.Equal(t, "devbox", snap.Sessions[0].Host)
		assert.Equal(t, "aaaaaaaa-1111-4222-8333-444455556666", snap.Sessions[0].SessionID)

		// The remote reports itself as "local"; its errors and warnings must
		// arrive attributed to the ssh host instead.
		assert.Equal(t, map[string]string{"devbox": "titles unreadable"}, snap.HostErrors)
		assert.Equal(t, []string{"devbox: tail parse failed: truncated line"}, snap.Warnings)
	})

	t.Run("passes batch mode, connect timeout and debug flags", func(t *testing.T) {
		marker := filepath.Join(t.TempDir(), "args.txt")
		script := fmt.Sprintf("#!/bin/sh\necho \"$@\" > %s\ncat <<'JSON'\n%s\nJSON\n", marker, emptySnapshot)
		c := stubSSH(t, script)

		_, err := c.Fetch(context.Background(), "devbox", true)
		require.NoError(t, err)

		raw, err := os.ReadFile(marker)
		require.NoError(t, err)
		assert.Equal(t,
			"-o BatchMode=yes -o ConnectTimeout=3 devbox codex-ps --json --host local --debug",
			strings.TrimSpace(string(raw)))
	})

	t.Run("ssh failure surfaces exit status and stderr", func(t *testing.T) {
		c := stubSSH(t, "#!/bin/sh\necho 'Connection refused' >&2\nexit 255\n")

		_, err := c.Fetch(context.Background(), "devbox", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ssh devbox failed (status 255)")
		assert.Contains(t, err.Error(), "Connection refused")
	})

	t.Run("long stderr is truncated in the middle", func(t *testing.T) {
		c := stubSSH(t, "#!/bin/sh\nhead -c 400 /dev/zero | tr '\\0' 'A' >&2\nexit 255\n")

		_, err := c.Fetch(context.Background(), "devbox", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "…")
		assert.Less(t, len(err.Error()), 400)
	})

	t.Run("non-JSON output is a parse error", func(t *testing.T) {
		c := stubSSH(t, "#!/bin/sh\necho 'bash: codex-ps: command not found'\n")

		_, err := c.Fetch(context.Background(), "devbox", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse remote snapshot from host=devbox")
	})

	t.Run("slow host is killed and reported as timeout", func(t *testing.T) {
		c := stubSSH(t, "#!/bin/sh\nsleep 5\n")
		c.Timeout = 100 * time.Millisecond

		_, err := c.Fetch(context.Background(), "devbox", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("missing ssh binary surfaces the exec error", func(t *testing.T) {
		c := New()
		c.SSHBin = "definitely-not-a-real-binary-name"

		_, err := c.Fetch(context.Background(), "devbox", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "codex-ps --json")
	})
}

func TestFetchAll(t *testing.T) {
	t.Run("fans out in parallel and keeps input order", func(t *testing.T) {
		c := stubSSH(t, "#!/bin/sh\nsleep 0.5\ncat <<'JSON'\n"+emptySnapshot+"\nJSON\n")

		start := time.Now()
		results := c.FetchAll(context.Background(), []string{"a", "b", "c"}, false)
		elapsed := time.Since(start)

		require.Len(t, results, 3)
		assert.Equal(t, "a", results[0].Host)
		assert.Equal(t, "b", results[1].Host)
		assert.Equal(t, "c", results[2].Host)
		for _, res := range results {
			require.NoError(t, res.Err)
			require.NotNil(t, res.Snapshot)
		}

		// Sequential fetches would take at least 1.5s here.
		assert.Less(t, elapsed, 1200*time.Millisecond)
	})

	t.Run("one failing host does not block the others", func(t *testing.T) {
		script := "#!/bin/sh\nif [ \"$5\" = \"bad\" ]; then exit 255; fi\ncat <<'JSON'\n" + emptySnapshot + "\nJSON\n"
		c := stubSSH(t, script)

		results := c.FetchAll(context.Background(), []string{"bad", "good"}, false)

		require.Len(t, results, 2)
		assert.Error(t, results[0].Err)
		assert.Nil(t, results[0].Snapshot)
		require.NoError(t, results[1].Err)
		assert.Equal(t, "good", results[1].Snapshot.Host)
	})
}
