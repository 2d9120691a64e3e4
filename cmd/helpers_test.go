package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/iksnae/legal-buddy/testutil"
)

// cmdEnv is an isolated data directory plus a fake backend
type cmdEnv struct {
	dir     string
	backend *testutil.FakeBackend
}

func newCmdEnv(t *testing.T) *cmdEnv {
	t.Helper()
	env := &cmdEnv{
		dir:     testutil.CreateTempDir(t),
		backend: testutil.NewFakeBackend(t),
	}
	testutil.WriteFile(t, env.dir, "config.yaml", fmt.Sprintf(`base_url: %s
poll:
  max_attempts: 3
  interval: 1ms
`, env.backend.URL))
	return env
}

// run executes the root command with args against env and returns what was
// written to stdout and stderr
func (env *cmdEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	full := append([]string{"--storage", env.dir}, args...)
	rootCmd.SetArgs(full)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags() {
	verbose = false
	storagePath = ""
	configPath = ""
	backendURL = ""
	traceOut = false
	uploadNoWait = false
	summaryID = ""
	extractID = ""
	askID = ""
	historyLimit = 0
	format = "jsonl"
	outputDir = "./exports"
	healthcheckVerbose = false
}

func findCommand(name string) bool {
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}
