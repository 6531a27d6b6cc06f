package commands

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in, name, args string
		ok             bool
	}{
		{"/newgame", "/newgame", "", true},
		{"/NewGame@gamebot", "/newgame", "", true},
		{"/join  abc123 ", "/join", "abc123", true},
		{"newgame", "", "", false},
		{"/", "", "", false},
		{"/new-game", "", "", false},
	}
	for _, tc := range cases {
		name, args, ok := Parse(tc.in)
		if name != tc.name || args != tc.args || ok != tc.ok {
			t.Fatalf("Parse(%q) = %q, %q, %v", tc.in, name, args, ok)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("seed_sports2") {
		t.Fatalf("underscores and digits are allowed")
	}
	if Valid("") || Valid("über") {
		t.Fatalf("empty and non-latin names are rejected")
	}
	long := "abcdefghijklmnopqrstuvwxyz0123456"
	if Valid(long) {
		t.Fatalf("33 characters must be rejected")
	}
}
