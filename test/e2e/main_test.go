//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"testing"
)

var binPath string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "aquagrid-e2e")
	if err != nil {
		fmt.Printf("Failed to create build dir: %v\n", err)
		os.Exit(1)
	}

	binPath, err = buildBinary(dir)
	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}
