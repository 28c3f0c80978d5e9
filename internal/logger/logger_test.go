package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
		enabled zapcore.Level
	}{
		{"prod default", "prod", "", false, zapcore.InfoLevel},
		{"local default", "local", "", false, zapcore.DebugLevel},
		{"level override", "prod", "warn", false, zapcore.WarnLevel},
		{"bad level", "prod", "loud", true, 0},
		{"unknown env", "staging", "", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("level %s should be enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && l.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %s should be disabled", tt.enabled-1)
			}
		})
	}
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a logger")
	}
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = WithFields(ctx, zap.String("tenant", "SUB1"))
	ctx = WithFields(ctx)
	FromContext(ctx).Info("hello", zap.String("op", "search"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["tenant"] != "SUB1" || fields["op"] != "search" {
		t.Errorf("fields = %v", fields)
	}
}
