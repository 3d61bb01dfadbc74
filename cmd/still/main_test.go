package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type failingBar struct {
	calls []int
}

func (b *failingBar) Set(num int) error {
	b.calls = append(b.calls, num)
	return errors.New("terminal gone")
}

func TestProgressFuncLogsFirstError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	bar := &failingBar{}
	progress := progressFunc(bar, logger)
	for i := 1; i <= 3; i++ {
		progress(i, 3)
	}

	if len(bar.calls) != 3 || bar.calls[2] != 3 {
		t.Errorf("Set calls = %v, want [1 2 3]", bar.calls)
	}
	out := buf.String()
	if n := strings.Count(out, "progress bar"); n != 1 {
		t.Errorf("logged %d progress errors, want 1:\n%s", n, out)
	}
	if !strings.Contains(out, "terminal gone") {
		t.Errorf("log missing error text:\n%s", out)
	}
}
