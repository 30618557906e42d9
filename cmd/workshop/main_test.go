package main

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jmagar/workshop-cli/internal/testutil"
)

func TestWithYes(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"download", "1", "--detach"}, []string{"download", "1", "--detach", "--yes"}},
		{[]string{"download", "1", "-y"}, []string{"download", "1", "-y"}},
		{[]string{"download", "1", "--yes", "--detach"}, []string{"download", "1", "--yes", "--detach"}},
	}
	for _, tt := range tests {
		in := append([]string(nil), tt.in...)
		if got := withYes(in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("withYes(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if !reflect.DeepEqual(in, tt.in) {
			t.Errorf("withYes mutated its input: %v", in)
		}
	}
}

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var got bool
		testutil.CaptureStdout(t, func() {
			got = promptYesNo(strings.NewReader(tt.input), "Download Map?", "msg")
		})
		if got != tt.want {
			t.Errorf("promptYesNo(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOrUnset(t *testing.T) {
	if orUnset("") != "(not set)" || orUnset("x") != "x" {
		t.Fatal("orUnset")
	}
}
