package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunRejectsBadUsage(t *testing.T) {
	cases := [][]string{
		nil,
		{"vacuum"},
		{"stats", "extra"},
	}
	for _, args := range cases {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != 2 {
			t.Fatalf("run(%q) = %d", args, code)
		}
		if !strings.Contains(stderr.String(), "usage: dbtool") {
			t.Fatalf("run(%q) printed no usage: %q", args, stderr.String())
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"check-structure", "cleanup-duplicates", "stats"} {
		if commands[name] == nil {
			t.Fatalf("%s missing", name)
		}
	}
}
