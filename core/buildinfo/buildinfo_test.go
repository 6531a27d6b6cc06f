package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestMergeFillsBlanksFromVCS(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	got := merge(Info{Version: "dev"}, bi)
	if got.Version != "v1.4.0" || got.Commit != "0123456789ab" || got.Date != "2026-10-01T10:00:00Z" || !got.Modified {
		t.Fatalf("merge = %+v", got)
	}
}

func TestMergeKeepsLdflags(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}},
	}
	got := merge(Info{Version: "v2.0.0", Commit: "abc"}, bi)
	if got.Version != "v2.0.0" || got.Commit != "abc" {
		t.Fatalf("merge = %+v", got)
	}
}
