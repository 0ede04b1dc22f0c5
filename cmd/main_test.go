// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xkilldash9x/domkit/internal/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// resetForTest provides the single source of truth for resetting test state.
// The home directory points at an empty temp dir so no user config is found,
// and the logger only reports errors.
func resetForTest(t *testing.T) {
	t.Helper()

	cfgFile = ""
	osExit = os.Exit
	stdin = os.Stdin
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DOMKIT_LOGGER_LEVEL", "error")
	observability.ResetForTest()

	t.Cleanup(func() {
		cfgFile = ""
		stdin = os.Stdin
		homedir.DisableCache = false
		observability.ResetForTest()
	})
}

// executeCommand runs a fresh root command and returns what it wrote.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetForTest(t)

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// writeFile writes content into the test's temp dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
