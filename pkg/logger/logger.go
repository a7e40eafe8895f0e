// Package logger provides structured logging on top of logrus.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ContextKey is the type of context keys understood by WithContext.
type ContextKey string

const (
	// CallIDKey carries the identifier of a single operation invocation.
	CallIDKey ContextKey = "call_id"
	// OperationKey carries the name of the operation being executed.
	OperationKey ContextKey = "operation"
	// AccountKey carries the address of the connected account.
	AccountKey ContextKey = "account"
)

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // json, text
	Output io.Writer // defaults to stderr
}

// Logger wraps a logrus logger with a component name.
type Logger struct {
	*logrus.Logger
	component string
}

// New creates a logger for component from cfg.
func New(component string, cfg Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	} else {
		l.SetOutput(os.Stderr)
	}

	return &Logger{Logger: l, component: component}
}

// NewDefault creates an info-level text logger for component.
func NewDefault(component string) *Logger {
	return New(component, Config{Level: "info", Format: "text"})
}

// NewDiscard creates a logger that drops everything. Useful in tests.
func NewDiscard(component string) *Logger {
	return New(component, Config{Level: "panic", Output: io.Discard})
}

// Component returns the component name.
func (l *Logger) Component() string {
	return l.component
}

// Named returns a logger sharing the same sink under a different component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

// WithContext returns an entry tagged with the component and any values
// carried in ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("component", l.component)
	if ctx == nil {
		return entry
	}
	for _, key := range []ContextKey{CallIDKey, OperationKey, AccountKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			entry = entry.WithField(string(key), v)
		}
	}
	return entry.WithContext(ctx)
}

// WithFields returns an entry tagged with the component and fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithField("component", l.component).WithFields(fields)
}

// ContextWithCallID stores the call identifier in ctx.
func ContextWithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, CallIDKey, callID)
}

// ContextWithOperation stores the operation name in ctx.
func ContextWithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, OperationKey, op)
}

// ContextWithAccount stores the account address in ctx.
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, AccountKey, account)
}

// CallIDFromContext returns the call identifier stored in ctx, if any.
func CallIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CallIDKey).(string)
	return v
}
