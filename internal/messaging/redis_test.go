package messaging

import (
	"testing"

	"macropad-service/internal/logger"
)

func TestCommandLine(t *testing.T) {
	tests := map[string]string{
		"SET_HOME":                "SET_HOME;",
		"SET_HOME;":               "SET_HOME;",
		` SET_MODE:{"mode":"x"} `: `SET_MODE:{"mode":"x"};`,
		"":                        "",
		"\n":                      "",
	}
	for in, want := range tests {
		if got := commandLine(in); got != want {
			t.Errorf("commandLine(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestReadLineDoesNotBlock(t *testing.T) {
	r := NewRedisMirror("127.0.0.1:0", logger.NewLogger(nil, logger.LogLevelNone))
	defer r.cancel()

	if _, ok := r.ReadLine(); ok {
		t.Error("Expected no command on an empty queue")
	}

	r.commands <- "SET_HOME;"
	line, ok := r.ReadLine()
	if !ok || line != "SET_HOME;" {
		t.Errorf("Expected queued command, got %q, %v", line, ok)
	}
}
