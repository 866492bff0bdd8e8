package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelaguiz/codex-ps/internal/config"
)

// testGlobals creates a Globals struct with captured stdout/stderr
func testGlobals(jsonOut bool) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Globals{
		Hosts:  []string{"local"},
		JSON:   jsonOut,
		Stdout: stdout,
		Stderr: stderr,
		Config: config.Default(),
	}, stdout, stderr
}

// testParser builds the real command grammar with the vars main.go supplies.
func testParser(t *testing.T) (*kong.Kong, *CLI) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("codex-ps"),
		kong.Vars{
			"config_host":              "local",
			"config_refresh_ms":        "1000",
			"config_ssh_bin":           "ssh",
			"config_remote_bin":        "codex-ps",
			"config_remote_timeout_ms": "6000",
		},
	)
	require.NoError(t, err)
	return parser, cli
}

// --- Grammar Tests ---

func TestCLIParse(t *testing.T) {
	t.Run("bare invocation selects watch", func(t *testing.T) {
		parser, _ := testParser(t)
		ctx, err := parser.Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, "watch", ctx.Command())
	})

	t.Run("bare --json still selects watch", func(t *testing.T) {
		parser, cli := testParser(t)
		ctx, err := parser.Parse([]string{"--json"})
		require.NoError(t, err)
		assert.Equal(t, "watch", ctx.Command())
		assert.True(t, cli.JSON)
	})

	t.Run("global flags default from config vars", func(t *testing.T) {
		parser, cli := testParser(t)
		_, err := parser.Parse([]string{"ps"})
		require.NoError(t, err)
		assert.Equal(t, "local", cli.Host)
		assert.Equal(t, "ssh", cli.SSHBin)
		assert.Equal(t, "codex-ps", cli.RemoteBin)
		assert.Equal(t, 6000, cli.RemoteTimeout)
	})

	t.Run("watch refresh defaults from config vars", func(t *testing.T) {
		parser, cli := testParser(t)
		_, err := parser.Parse([]string{"watch"})
		require.NoError(t, err)
		assert.Equal(t, 1000, cli.Watch.RefreshMS)
	})

	t.Run("host selection is a plain string", func(t *testing.T) {
		parser, cli := testParser(t)
		_, err := parser.Parse([]string{"--host", "devbox,user@gpu1", "ps"})
		require.NoError(t, err)
		assert.Equal(t, "devbox,user@gpu1", cli.Host)
	})

	t.Run("label set takes id and joined words", func(t *testing.T) {
		parser, cli := testParser(t)
		_, err := parser.Parse([]string{"label", "set", "0f2d1c3e-1111-4222-8333-444455556666", "api", "refactor"})
		require.NoError(t, err)
		assert.Equal(t, "0f2d1c3e-1111-4222-8333-444455556666", cli.Label.Set.SessionID)
		assert.Equal(t, []string{"api", "refactor"}, cli.Label.Set.Label)
		assert.Equal(t, "local", cli.Label.Set.ForHost)
	})

	t.Run("completion shell is constrained", func(t *testing.T) {
		parser, cli := testParser(t)
		_, err := parser.Parse([]string{"completion", "zsh"})
		require.NoError(t, err)
		assert.Equal(t, "zsh", cli.Completion.Shell)

		parser2, _ := testParser(t)
		_, err = parser2.Parse([]string{"completion", "powershell"})
		assert.Error(t, err)
	})
}

func TestNewGlobalsWithConfig(t *testing.T) {
	t.Run("flags override config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Hosts = []string{"devbox"}
		c := &CLI{Host: "all", JSON: true, SSHBin: "altssh", RemoteBin: "cps", RemoteTimeout: 9000}

		g := NewGlobalsWithConfig(c, cfg)
		assert.Equal(t, []string{"local", "devbox"}, g.Hosts)
		assert.True(t, g.JSON)
		assert.Equal(t, "altssh", g.Config.Remote.SSHBin)
		assert.Equal(t, "cps", g.Config.Remote.Bin)
		assert.Equal(t, 9000, g.Config.Remote.TimeoutMS)
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		g := NewGlobalsWithConfig(&CLI{Host: "local"}, nil)
		require.NotNil(t, g.Config)
		assert.Equal(t, []string{"local"}, g.Hosts)
		assert.Equal(t, 1000, g.Config.RefreshMS)
	})

	t.Run("codex-home flag wins over config home", func(t *testing.T) {
		cfg := config.Default()
		cfg.Home = "/cfg/home"

		g := NewGlobalsWithConfig(&CLI{CodexHome: "/flag/home"}, cfg)
		home, err := g.ResolveHome()
		require.NoError(t, err)
		assert.Equal(t, "/flag/home", home)

		g2 := NewGlobalsWithConfig(&CLI{}, cfg)
		home2, err := g2.ResolveHome()
		require.NoError(t, err)
		assert.Equal(t, "/cfg/home", home2)
	})

	t.Run("logger is nil without --verbose", func(t *testing.T) {
		g := NewGlobalsWithConfig(&CLI{}, nil)
		assert.Nil(t, g.Logger())
		g.Debugf("must not panic")
	})
}

// --- Error Output Tests ---

func TestOutputErrorCommon(t *testing.T) {
	t.Run("text mode writes code and hint to stderr", func(t *testing.T) {
		globals, stdout, stderr := testGlobals(false)

		err := outputErrorCommon(globals, "COLLECT_FAILED", "boom", "run codex-ps doctor")
		require.Error(t, err)
		assert.Equal(t, "boom", err.Error())
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "Error [COLLECT_FAILED]: boom")
		assert.Contains(t, stderr.String(), "(hint: run codex-ps doctor)")
	})

	t.Run("json mode writes the error object to stdout", func(t *testing.T) {
		globals, stdout, stderr := testGlobals(true)

		err := outputErrorCommon(globals, "HOME_UNAVAILABLE", "no home", "set --codex-home")
		require.Error(t, err)
		assert.Empty(t, stderr.String())

		var out errorOutput
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
		assert.Equal(t, "error", out.Type)
		assert.Equal(t, "HOME_UNAVAILABLE", out.Code)
		assert.Equal(t, "no home", out.Message)
		assert.Equal(t, "set --codex-home", out.Hint)
	})

	t.Run("empty hint is omitted from json", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)

		_ = outputErrorCommon(globals, "EMPTY_LABEL", "label text is empty")
		assert.NotContains(t, stdout.String(), "hint")
	})
}

// --- Config Command Tests ---

func TestConfigShowCmd_Run(t *testing.T) {
	t.Run("outputs config in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		cmd := &ConfigShowCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "Current Configuration:")
		assert.Contains(t, out, "refresh_ms: 1000")
		assert.Contains(t, out, "Status:")
		assert.Contains(t, out, "working_max_age_s: 15")
		assert.Contains(t, out, "Remote:")
		assert.Contains(t, out, "Watch:")
	})

	t.Run("outputs config as JSON", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		cmd := &ConfigShowCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "config", result["type"])
		assert.Contains(t, result, "refresh_ms")
		assert.Contains(t, result, "status")
		assert.Contains(t, result, "remote")
		assert.Contains(t, result, "labels")
		assert.Contains(t, result, "watch")
	})
}

func TestConfigPathCmd_Run(t *testing.T) {
	t.Run("outputs path info in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		cmd := &ConfigPathCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		out := stdout.String()
		// Either shows the path or says no config found
		assert.True(t, strings.Contains(out, "Config file:") || strings.Contains(out, "No configuration file found"))
	})

	t.Run("outputs path as JSON", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		cmd := &ConfigPathCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "config_path", result["type"])
		assert.Contains(t, result, "path")
	})
}

func TestConfigGenerateCmd_Run(t *testing.T) {
	t.Run("outputs sample config YAML", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		cmd := &ConfigGenerateCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "# codex-ps configuration file")
		assert.Contains(t, out, "refresh_ms: 1000")
		assert.Contains(t, out, "working_max_age_s: 15")
		assert.Contains(t, out, "ssh_bin: ssh")
		assert.Contains(t, out, "fs_events: true")
	})
}

// --- Schema Command Tests ---

func TestSchemaCmd_Run(t *testing.T) {
	t.Run("outputs all schemas by default", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		cmd := &SchemaCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))

		assert.Equal(t, "http://json-schema.org/draft-07/schema#", result["$schema"])
		assert.Equal(t, "codex-ps Output Schemas", result["title"])

		defs := result["definitions"].(map[string]interface{})
		assert.Contains(t, defs, "snapshot")
		assert.Contains(t, defs, "session")
		assert.Contains(t, defs, "label_entry")
		assert.Contains(t, defs, "error")
		assert.Contains(t, defs, "doctor")
	})

	t.Run("filters schemas by type", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		cmd := &SchemaCmd{Type: []string{"session", "error"}}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))

		defs := result["definitions"].(map[string]interface{})
		assert.Len(t, defs, 2)
		assert.Contains(t, defs, "session")
		assert.Contains(t, defs, "error")
		assert.NotContains(t, defs, "snapshot")
	})
}

func TestSessionSchema(t *testing.T) {
	schema := sessionSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, "Session Row", schema["title"])

	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "host")
	assert.Contains(t, props, "session_id")
	assert.Contains(t, props, "pids")
	assert.Contains(t, props, "status")
	assert.Contains(t, props, "lineage")
	assert.Contains(t, props, "log_path")
}

func TestSnapshotSchema(t *testing.T) {
	schema := snapshotSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, "Snapshot", schema["title"])

	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "generated_at_unix_s")
	assert.Contains(t, props, "sessions")
	assert.Contains(t, props, "host_errors")
	assert.Contains(t, props, "warnings")
}

func TestDoctorSchema(t *testing.T) {
	schema := doctorSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, "Doctor Report", schema["title"])

	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "checks")
	assert.Contains(t, props, "all_passed")
	assert.Contains(t, props, "error_count")
}

// --- Label Command Tests ---

func TestLabelSetCmd_Run(t *testing.T) {
	t.Run("stores a label and confirms", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		globals.Config.Labels.Path = filepath.Join(t.TempDir(), "labels.jsonl")
		cmd := &LabelSetCmd{ForHost: "local", SessionID: "0f2d1c3e-1111-4222-8333-444455556666", Label: []string{"api", "refactor"}}

		err := cmd.Run(globals)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Labeled")
		assert.Contains(t, stdout.String(), `"api refactor"`)
	})

	t.Run("JSON output carries the label", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		globals.Config.Labels.Path = filepath.Join(t.TempDir(), "labels.jsonl")
		cmd := &LabelSetCmd{ForHost: "devbox", SessionID: "0f2d1c3e-1111-4222-8333-444455556666", Label: []string{"gpu", "run"}}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "label", result["type"])
		assert.Equal(t, "devbox", result["host"])
		assert.Equal(t, "0f2d1c3e-1111-4222-8333-444455556666", result["session_id"])
		assert.Equal(t, "gpu run", result["label"])
	})

	t.Run("rejects empty label", func(t *testing.T) {
		globals, _, stderr := testGlobals(false)
		globals.Config.Labels.Path = filepath.Join(t.TempDir(), "labels.jsonl")
		cmd := &LabelSetCmd{ForHost: "local", SessionID: "0f2d1c3e-1111-4222-8333-444455556666", Label: []string{"  "}}

		err := cmd.Run(globals)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "EMPTY_LABEL")
	})
}

func TestLabelClearCmd_Run(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.jsonl")
	sessionID := "0f2d1c3e-1111-4222-8333-444455556666"

	globals, _, _ := testGlobals(false)
	globals.Config.Labels.Path = path
	set := &LabelSetCmd{ForHost: "local", SessionID: sessionID, Label: []string{"temp"}}
	require.NoError(t, set.Run(globals))

	t.Run("clears and confirms", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		globals.Config.Labels.Path = path
		cmd := &LabelClearCmd{ForHost: "local", SessionID: sessionID}

		err := cmd.Run(globals)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Cleared label for")
	})

	t.Run("JSON output has a null label", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		globals.Config.Labels.Path = path
		cmd := &LabelClearCmd{ForHost: "local", SessionID: sessionID}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "label", result["type"])
		assert.Contains(t, result, "label")
		assert.Nil(t, result["label"])
	})
}

func TestLabelLsCmd_Run(t *testing.T) {
	t.Run("empty store says so", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		globals.Config.Labels.Path = filepath.Join(t.TempDir(), "labels.jsonl")
		cmd := &LabelLsCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No labels stored.")
	})

	t.Run("lists labels sorted by host then id", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "labels.jsonl")
		seed := func(host, id, label string) {
			g, _, _ := testGlobals(false)
			g.Config.Labels.Path = path
			require.NoError(t, (&LabelSetCmd{ForHost: host, SessionID: id, Label: []string{label}}).Run(g))
		}
		seed("zhost", "0f2d1c3e-1111-4222-8333-444455556666", "late")
		seed("ahost", "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", "early")

		globals, stdout, _ := testGlobals(true)
		globals.Config.Labels.Path = path
		cmd := &LabelLsCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result labelListOutput
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "labels", result.Type)
		require.Len(t, result.Labels, 2)
		assert.Equal(t, "ahost", result.Labels[0].Host)
		assert.Equal(t, "early", result.Labels[0].Label)
		assert.Equal(t, "zhost", result.Labels[1].Host)
	})
}

// --- Ps Command Tests ---

func TestPsCmd_Run(t *testing.T) {
	home := t.TempDir()
	day := filepath.Join(home, "sessions", "2026", "02", "03")
	require.NoError(t, os.MkdirAll(day, 0o755))

	sessionID := "0f2d1c3e-1111-4222-8333-444455556666"
	rolloutPath := filepath.Join(day, "rollout-2026-02-03T16-12-22-"+sessionID+".jsonl")
	meta := `{"type":"session_meta","payload":{"id":"` + sessionID + `","cwd":"/work/proj","source":"cli","git":{"commit_hash":"abc123","branch":"main"}}}`
	require.NoError(t, os.WriteFile(rolloutPath, []byte(meta+"\n"), 0o644))

	// A stub lsof reports one holder process keeping the rollout open.
	fixture := fmt.Sprintf("p101\nfcwd\nn/work/proj\nftxt\nn/usr/local/bin/codex\nf3\nn%s\n", rolloutPath)
	stubDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stubDir, "lsof"), []byte("#!/bin/sh\ncat <<'FIXTURE'\n"+fixture+"FIXTURE\n"), 0o755))
	t.Setenv("PATH", stubDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	newGlobals := func(jsonOut bool) (*Globals, *bytes.Buffer, *bytes.Buffer) {
		globals, stdout, stderr := testGlobals(jsonOut)
		globals.homeOverride = home
		globals.Config.Labels.Path = filepath.Join(t.TempDir(), "labels.jsonl")
		return globals, stdout, stderr
	}

	t.Run("one pass prints a snapshot", func(t *testing.T) {
		globals, stdout, _ := newGlobals(true)
		cmd := &PsCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var snap map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap))
		sessions := snap["sessions"].([]interface{})
		require.Len(t, sessions, 1)

		row := sessions[0].(map[string]interface{})
		assert.Equal(t, "local", row["host"])
		assert.Equal(t, sessionID, row["session_id"])
		assert.Equal(t, "working", row["status"], "a freshly written rollout classifies as working")
		assert.Equal(t, rolloutPath, row["log_path"])
		assert.Equal(t, "main", row["branch"])
	})

	t.Run("table output renders the grouped row", func(t *testing.T) {
		globals, stdout, _ := newGlobals(false)
		cmd := &PsCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "0f2d1c3e")
		assert.Contains(t, out, "WORK")
		assert.Contains(t, out, "101")
	})

	t.Run("where filter drops non-matching rows", func(t *testing.T) {
		globals, stdout, _ := newGlobals(true)
		cmd := &PsCmd{Where: []string{"status=waiting"}}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var snap map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap))
		assert.Empty(t, snap["sessions"])
	})

	t.Run("stored labels overlay rows", func(t *testing.T) {
		globals, stdout, _ := newGlobals(true)
		require.NoError(t, (&LabelSetCmd{ForHost: "local", SessionID: sessionID, Label: []string{"api", "work"}}).Run(globals))
		stdout.Reset()

		err := (&PsCmd{}).Run(globals)
		require.NoError(t, err)

		var snap map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap))
		row := snap["sessions"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "api work", row["label"])
	})

	t.Run("invalid where clause is rejected", func(t *testing.T) {
		globals, _, stderr := newGlobals(false)
		cmd := &PsCmd{Where: []string{"nonsense"}}

		err := cmd.Run(globals)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "INVALID_WHERE")
	})
}

// --- Doctor Command Tests ---

func TestDoctorCmd_checkResult(t *testing.T) {
	t.Run("check result struct", func(t *testing.T) {
		result := checkResult{
			Name:    "Test Check",
			Status:  "ok",
			Message: "Check passed",
			Details: "Additional info",
		}

		data, err := json.Marshal(result)
		require.NoError(t, err)

		var decoded checkResult
		err = json.Unmarshal(data, &decoded)
		require.NoError(t, err)

		assert.Equal(t, "Test Check", decoded.Name)
		assert.Equal(t, "ok", decoded.Status)
		assert.Equal(t, "Check passed", decoded.Message)
		assert.Equal(t, "Additional info", decoded.Details)
	})
}

func TestDoctorCmd_doctorReport(t *testing.T) {
	t.Run("doctor report struct", func(t *testing.T) {
		report := doctorReport{
			Type:      "doctor",
			Timestamp: time.Now().Format(time.RFC3339),
			Checks: []checkResult{
				{Name: "check1", Status: "ok", Message: "passed"},
				{Name: "check2", Status: "warning", Message: "needs attention"},
				{Name: "check3", Status: "error", Message: "failed"},
			},
			AllPassed:  false,
			ErrorCount: 1,
			WarnCount:  1,
		}

		data, err := json.Marshal(report)
		require.NoError(t, err)

		var decoded doctorReport
		err = json.Unmarshal(data, &decoded)
		require.NoError(t, err)

		assert.Equal(t, "doctor", decoded.Type)
		assert.Len(t, decoded.Checks, 3)
		assert.False(t, decoded.AllPassed)
		assert.Equal(t, 1, decoded.ErrorCount)
		assert.Equal(t, 1, decoded.WarnCount)
	})
}

func TestDoctorCmd_checkHome(t *testing.T) {
	cmd := &DoctorCmd{}

	t.Run("existing home is ok", func(t *testing.T) {
		globals, _, _ := testGlobals(false)
		globals.homeOverride = t.TempDir()

		result := cmd.checkHome(globals)
		assert.Equal(t, "ok", result.Status)
		assert.Equal(t, globals.homeOverride, result.Message)
	})

	t.Run("missing home warns rather than fails", func(t *testing.T) {
		globals, _, _ := testGlobals(false)
		globals.homeOverride = filepath.Join(t.TempDir(), "missing")

		result := cmd.checkHome(globals)
		assert.Equal(t, "warning", result.Status)
		assert.Contains(t, result.Message, "does not exist")
	})
}

func TestDoctorCmd_checkWritePermission(t *testing.T) {
	cmd := &DoctorCmd{}

	t.Run("returns true for writable directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		assert.True(t, cmd.checkWritePermission(tmpDir))
	})

	t.Run("returns false for non-writable directory", func(t *testing.T) {
		// Try a directory that doesn't exist
		assert.False(t, cmd.checkWritePermission("/nonexistent/path"))
	})
}

func TestDoctorCmd_Run_JSONShape(t *testing.T) {
	globals, stdout, _ := testGlobals(true)
	globals.homeOverride = t.TempDir()
	globals.Config.Labels.Path = filepath.Join(t.TempDir(), "labels.jsonl")
	cmd := &DoctorCmd{}

	// Environment checks may fail on the test machine; the report must stay
	// machine-readable either way.
	_ = cmd.Run(globals)

	var report doctorReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, "doctor", report.Type)
	assert.NotEmpty(t, report.Timestamp)
	assert.Len(t, report.Checks, 5, "home, lsof, label store, tmux, config file")
}

// --- Version Command Tests ---

func TestVersionCmd_Run(t *testing.T) {
	t.Run("outputs version in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		cmd := &VersionCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "codex-ps version")
	})

	t.Run("outputs version as JSON", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		cmd := &VersionCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "version", result["type"])
		assert.Contains(t, result, "version")
		assert.Contains(t, result, "commit")
	})
}

// --- Update Command Tests ---

func TestUpdateCmd_Run(t *testing.T) {
	t.Run("outputs instructions in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(false)
		cmd := &UpdateCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "Current version:")
		assert.Contains(t, out, "brew upgrade codex-ps")
		assert.Contains(t, out, releasesURL)
	})

	t.Run("outputs instructions as JSON", func(t *testing.T) {
		globals, stdout, _ := testGlobals(true)
		cmd := &UpdateCmd{}

		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "update", result["type"])
		assert.Contains(t, result, "current_version")
		assert.Contains(t, result, "homebrew")
		assert.Contains(t, result, "go_install")
	})
}
