//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedDrawbiasPath holds the path to a shared drawbias binary built once for all tests.
	sharedDrawbiasPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// fixtureDraws is a small ledger: 07 is drawn three times, one row repeats
// an earlier draw and one row is invalid.
const fixtureDraws = `fecha,horario,pais,numero
2024-03-01,11AM,cr,07
2024-03-01,3PM,cr,15
2024-03-01,9PM,cr,51
2024-03-02,11AM,cr,23
2024-03-02,3PM,cr,07
2024-03-02,9PM,ni,42
2024-03-03,11AM,cr,15
2024-03-03,3PM,cr,88
2024-03-03,9PM,cr,07
2024-03-04,11AM,ni,51
2024-03-04,11AM,ni,51
2024-03-04,3PM,cr,xx
`

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getDrawbiasBinary returns the path to the drawbias binary, building it once if needed.
func getDrawbiasBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "drawbias-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		drawbiasPath := filepath.Join(tempDir, "drawbias")
		buildCmd := exec.Command("go", "build", "-o", drawbiasPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build drawbias: %v", err))
		}

		sharedDrawbiasPath = drawbiasPath
	})

	return sharedDrawbiasPath
}

// writeFixture writes the fixture ledger into dir and returns its path.
func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "draws.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureDraws), 0o644))
	return path
}

// runDrawbias runs the binary with env appended to the process environment
// and returns stdout. Stderr is logged on failure.
func runDrawbias(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getDrawbiasBinary(), args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}
