package logger

import (
	"bytes"
	"os"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestDebug_NilIsSilent(t *testing.T) {
	var d *Debug
	out := captureStdout(t, func() {
		d.Debug0("hello")
		d.Debug1("hello")
		d.Debug2("hello")
	})
	if out != "" {
		t.Fatalf("expected no output from a nil Debug logger, got %q", out)
	}
}

func TestDebug_LevelGating(t *testing.T) {
	d := NewDebug("t", 1)
	out := captureStdout(t, func() {
		d.Debug0("a")
		d.Debug1("b")
		d.Debug2("c")
	})
	if !bytes.Contains([]byte(out), []byte("a")) || !bytes.Contains([]byte(out), []byte("b")) {
		t.Fatalf("expected Debug0/Debug1 output at level 1, got %q", out)
	}
	if bytes.Contains([]byte(out), []byte("c")) {
		t.Fatalf("did not expect Debug2 output at level 1, got %q", out)
	}
}
