/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	ctx := WithPage(WithRequestID(context.Background(), "req-1"), "products")
	l.Infof(ctx, "rendered %d rows", 3)
	l.Debugf(context.Background(), "no fields")

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	if first.Message != "rendered 3 rows" {
		t.Errorf("Message = %q", first.Message)
	}
	fields := first.ContextMap()
	if fields["request_id"] != "req-1" || fields["page"] != "products" {
		t.Errorf("context fields = %v", fields)
	}
	if len(entries[1].Context) != 0 {
		t.Errorf("unexpected fields: %v", entries[1].Context)
	}
}

func TestLevelsFilter(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := New(zap.New(core))

	l.Infof(context.Background(), "dropped")
	l.Warnf(context.Background(), "kept")
	l.Errorf(context.Background(), "kept too")

	if logs.Len() != 2 {
		t.Errorf("got %d entries, want 2", logs.Len())
	}
}

func TestNewZapLogger(t *testing.T) {
	l, err := NewZapLogger("debug")
	if err != nil {
		t.Fatalf("NewZapLogger failed: %v", err)
	}
	if !l.Zap().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}
	NewNop().Infof(context.Background(), "discarded")
}
