package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Events(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/events.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_Events -update
	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
}
