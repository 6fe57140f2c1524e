package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/refcell/errors"
)

func kindOf(t *testing.T, err error) errors.Kind {
	t.Helper()
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	return e.Kind
}

// emptyModule is the smallest valid core module: magic and version only.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func teardownLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "  teardown ") {
			lines = append(lines, strings.TrimPrefix(line, "  teardown "))
		}
	}
	return lines
}

func TestRunWasm_TeardownOrder(t *testing.T) {
	cfg.Wasm.Interpreter = true
	defer func() { cfg.Wasm.Interpreter = false }()

	orders := [][]string{
		{"runtime", "compiled", "instance"},
		{"instance", "compiled", "runtime"},
		{"compiled", "runtime", "instance"},
	}
	want := "instance,compiled,runtime"

	for _, order := range orders {
		t.Run(strings.Join(order, ","), func(t *testing.T) {
			var out bytes.Buffer
			if err := runWasm(context.Background(), &out, emptyModule, "m", order, false); err != nil {
				t.Fatalf("runWasm failed: %v", err)
			}
			if got := strings.Join(teardownLines(out.String()), ","); got != want {
				t.Errorf("teardown order = %s, want %s\n%s", got, want, out.String())
			}
		})
	}
}

func TestRunWasm_BadInput(t *testing.T) {
	cfg.Wasm.Interpreter = true
	defer func() { cfg.Wasm.Interpreter = false }()

	tests := []struct {
		name  string
		wasm  []byte
		order []string
		kind  errors.Kind
	}{
		{"unknown handle", emptyModule, []string{"runtime", "compiled", "window"}, errors.KindInvalidInput},
		{"duplicate", emptyModule, []string{"runtime", "runtime", "instance"}, errors.KindInvalidInput},
		{"missing", emptyModule, []string{"runtime", "compiled"}, errors.KindInvalidInput},
		{"invalid module", []byte("not wasm"), []string{"runtime", "compiled", "instance"}, errors.KindInstantiation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runWasm(context.Background(), &out, tt.wasm, "m", tt.order, false)
			if err == nil {
				t.Fatal("expected error")
			}
			if k := kindOf(t, err); k != tt.kind {
				t.Fatalf("Kind = %s, want %s (%v)", k, tt.kind, err)
			}
		})
	}
}

func TestReadWasm_Missing(t *testing.T) {
	_, err := readWasm(filepath.Join(t.TempDir(), "absent.wasm"))
	if err == nil {
		t.Fatal("expected error")
	}
	if k := kindOf(t, err); k != errors.KindNotFound {
		t.Fatalf("Kind = %s, want %s", k, errors.KindNotFound)
	}
}
