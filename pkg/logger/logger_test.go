package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "debug"},
		{"warn", "warning"},
		{"error", "error"},
		{"bogus", "info"},
		{"", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New("test", Config{Level: tt.level})
			assert.Equal(t, tt.want, l.GetLevel().String())
		})
	}
}

func TestWithContext_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("contracts", Config{Level: "debug", Format: "json", Output: &buf})

	ctx := ContextWithCallID(context.Background(), "call-1")
	ctx = ContextWithOperation(ctx, "post_job")
	l.WithContext(ctx).WithField("method", "post_job").Info("submitted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "contracts", entry["component"])
	assert.Equal(t, "call-1", entry["call_id"])
	assert.Equal(t, "post_job", entry["operation"])
	assert.Equal(t, "submitted", entry["msg"])
}

func TestWithContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	l := New("x", Config{Format: "json", Output: &buf})
	l.WithContext(context.Background()).Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasCall := entry["call_id"]
	assert.False(t, hasCall)
}

func TestNamed(t *testing.T) {
	l := NewDiscard("a")
	n := l.Named("b")
	assert.Equal(t, "a", l.Component())
	assert.Equal(t, "b", n.Component())
	assert.Same(t, l.Logger, n.Logger)
}

func TestCallIDFromContext(t *testing.T) {
	assert.Equal(t, "", CallIDFromContext(context.Background()))
	assert.Equal(t, "id", CallIDFromContext(ContextWithCallID(context.Background(), "id")))
}
