package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCommands = []Command{
	{Name: "post-job", Usage: "Post a job", Flags: []string{"title", "payment"}},
	{Name: "completion", Usage: "Generate shell completion"},
}

func TestWriteCompletion(t *testing.T) {
	for _, shell := range Shells {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCompletion(&buf, shell, "spectralpay", testCommands))
			out := buf.String()
			assert.Contains(t, out, "post-job")
			assert.Contains(t, out, "spectralpay")
			assert.Contains(t, out, "bash zsh fish")
		})
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCompletion(&buf, "bash", "spectralpay", testCommands))
	assert.Contains(t, buf.String(), "-title -payment")
	assert.Contains(t, buf.String(), "complete -F _spectralpay spectralpay")

	assert.Error(t, WriteCompletion(&buf, "powershell", "spectralpay", testCommands))
}

func TestStatusWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatus(&buf)
	s.Success("job posted")
	s.Error("failed")
	assert.Equal(t, "✓ job posted\n✗ failed\n", buf.String())
}

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf, "waiting")
	sp.Start()
	sp.Stop()
	assert.Empty(t, buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "< 1s", FormatDuration(500*time.Millisecond))
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h1m", FormatDuration(61*time.Minute))
}
