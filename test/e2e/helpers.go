//go:build e2e

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildBinary compiles the CLI into dir and returns its path.
func buildBinary(dir string) (string, error) {
	binPath := filepath.Join(dir, "aquagrid")
	// Navigate to root
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/aquagrid")
	cmd.Dir = "../../"
	cmd.Env = os.Environ()
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", &buildError{out: out, err: err}
	}
	return binPath, nil
}

type buildError struct {
	out []byte
	err error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + string(e.out)
}

// cleanEnv strips AQUAGRID_* settings and points HOME at an empty directory
// so no user config leaks into a run.
func cleanEnv(t *testing.T, extra ...string) []string {
	t.Helper()
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "AQUAGRID_") || strings.HasPrefix(e, "HOME=") {
			continue
		}
		env = append(env, e)
	}
	env = append(env, "HOME="+t.TempDir())
	return append(env, extra...)
}

// runCLI executes the binary and returns stdout and stderr.
func runCLI(t *testing.T, env []string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(binPath, args...)
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
