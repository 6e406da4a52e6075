package main

import (
	"path/filepath"
	"strings"
	"testing"

	"vocamail/internal/logs"
	"vocamail/internal/testsupport"
)

func TestLogsFiltersByRunID(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.LogDir, logs.LogFile),
		`{"msg":"daily cycle finished","run_id":"abc"}`+"\n"+
			`{"msg":"daily cycle finished","run_id":"def"}`+"\n")

	out := env.mustRun(t, "logs", "--run", "def")
	if strings.Contains(out, `"abc"`) || !strings.Contains(out, `"def"`) {
		t.Fatalf("unexpected filtered output %q", out)
	}

	out = env.mustRun(t, "logs", "-n", "1")
	requireContains(t, out, `"def"`)
}
