package cli

import (
	"encoding/json"
	"strings"
)

// SchemaCmd outputs JSON Schema for codex-ps output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (snapshot,session,label_entry,error,doctor). Default: all"`
}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"snapshot":    snapshotSchema(),
		"session":     sessionSchema(),
		"label_entry": labelEntrySchema(),
		"error":       errorSchema(),
		"doctor":      doctorSchema(),
	}

	// Determine which schemas to output
	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = []string{"snapshot", "session", "label_entry", "error", "doctor"}
	}

	// Build output
	out := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "codex-ps Output Schemas",
		"description": "JSON Schema definitions for codex-ps machine-readable output",
		"definitions": map[string]interface{}{},
	}

	defs := out["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	// Output as JSON
	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func nullable(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        []string{typ, "null"},
		"description": description,
	}
}

func snapshotSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Snapshot",
		"description": "One complete collection pass across all requested hosts",
		"properties": map[string]interface{}{
			"generated_at_unix_s": map[string]interface{}{
				"type":        "integer",
				"description": "Unix timestamp of the pass",
			},
			"host": map[string]interface{}{
				"type":        "string",
				"description": "Requested host selection, comma-joined",
			},
			"sessions": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "object"},
				"description": "Session rows (see the session definition); always an array, never null",
			},
			"host_errors": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": map[string]interface{}{"type": "string"},
				"description":          "Per-host failure messages; always an object, never null",
			},
			"warnings": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Non-fatal anomalies from the pass; always an array, never null",
			},
		},
		"required": []string{"generated_at_unix_s", "host", "sessions", "host_errors", "warnings"},
	}
}

func sessionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session Row",
		"description": "One observed session on one host. Unknown optional fields are explicit nulls, never omitted",
		"properties": map[string]interface{}{
			"host": map[string]interface{}{
				"type":        "string",
				"description": "Host the session runs on; local is this machine",
			},
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session uuid from the rollout filename",
			},
			"pids": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer"},
				"description": "Processes holding the rollout open; empty for remote-reported rows that lost it",
			},
			"tty":       nullable("string", "Controlling terminal device"),
			"title":     nullable("string", "Thread title from the global state file"),
			"label":     nullable("string", "User-assigned label from the label store"),
			"cwd":       nullable("string", "Working directory of the session process"),
			"repo_root": nullable("string", "Git repository root containing cwd"),
			"branch":    nullable("string", "Git branch recorded at session start"),
			"commit":    nullable("string", "Git commit recorded at session start"),
			"lineage": map[string]interface{}{
				"type":        "object",
				"description": "How the session came to exist; parent null means root",
				"properties": map[string]interface{}{
					"source":      nullable("string", "Spawn source, e.g. cli or subagent_thread_spawn"),
					"parent":      nullable("string", "Parent session id, null for roots"),
					"depth":       nullable("integer", "Spawn depth, null for roots"),
					"forked_from": nullable("string", "Session this one was forked from"),
				},
			},
			"status": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"working", "waiting", "unknown"},
				"description": "Activity classification from rollout recency",
			},
			"last_activity_unix_s": nullable("integer", "Rollout mtime as unix seconds"),
			"age_s":                nullable("integer", "Seconds since last activity at snapshot time"),
			"log_path": map[string]interface{}{
				"type":        "string",
				"description": "Rollout file path on the session's host",
			},
			"tmux":  nullable("string", "tmux pane id mapped via the session's tty"),
			"debug": nullable("object", "Diagnostic evidence; populated only with --debug"),
		},
		"required": []string{"host", "session_id", "pids", "status", "log_path"},
	}
}

func labelEntrySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Label Entry",
		"description": "One stored label from label ls",
		"properties": map[string]interface{}{
			"host": map[string]interface{}{
				"type":        "string",
				"description": "Host the labeled session lives on",
			},
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Full session uuid",
			},
			"label": map[string]interface{}{
				"type":        "string",
				"description": "Label text",
			},
		},
		"required": []string{"host", "session_id", "label"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Error message from codex-ps",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "error",
			},
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Error code (e.g., HOME_UNAVAILABLE, INVALID_WHERE)",
				"enum": []string{
					"HOME_UNAVAILABLE",
					"LABELS_UNAVAILABLE",
					"LABEL_WRITE_FAILED",
					"EMPTY_LABEL",
					"COLLECT_FAILED",
					"INVALID_WHERE",
					"INVALID_HOST",
					"NOT_A_TTY",
				},
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable error description",
			},
			"hint": map[string]interface{}{
				"type":        "string",
				"description": "Suggested next step, when one exists",
			},
		},
		"required": []string{"type", "code", "message"},
	}
}

func doctorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Doctor Report",
		"description": "Environment check results",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "doctor",
			},
			"timestamp": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "When the checks ran",
			},
			"checks": map[string]interface{}{
				"type":        "array",
				"description": "Individual check results",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":    map[string]interface{}{"type": "string"},
						"status":  map[string]interface{}{"type": "string", "enum": []string{"ok", "warning", "error"}},
						"message": map[string]interface{}{"type": "string"},
						"details": map[string]interface{}{"type": "string"},
					},
					"required": []string{"name", "status", "message"},
				},
			},
			"all_passed": map[string]interface{}{
				"type":        "boolean",
				"description": "True when no check warned or failed",
			},
			"error_count": map[string]interface{}{
				"type":        "integer",
				"description": "Number of failed checks",
			},
			"warn_count": map[string]interface{}{
				"type":        "integer",
				"description": "Number of checks that warned",
			},
		},
		"required": []string{"type", "timestamp", "checks", "all_passed", "error_count", "warn_count"},
	}
}
