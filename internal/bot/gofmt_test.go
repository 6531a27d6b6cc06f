package bot

import (
	"bytes"
	"go/format"
	"os"
	"testing"
)

func TestCommandSourceIsFormatted(t *testing.T) {
	src, err := os.ReadFile("command.go")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := format.Source(src)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("command.go is not gofmt-formatted")
	}
}
