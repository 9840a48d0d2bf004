package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestColoredWithoutColorKeepsText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "weird", "1.2"}
	for _, v := range tests {
		if got := Colored(v); got != v {
			t.Errorf("Colored(%q) = %q", v, got)
		}
	}
}

func TestBannerIncludesOptionalFields(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	origVersion, origCommit, origMessage, origDate := Version, GitCommit, GitMessage, BuildDate
	defer func() {
		color.NoColor = prev
		Version, GitCommit, GitMessage, BuildDate = origVersion, origCommit, origMessage, origDate
	}()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	GitMessage = ""
	BuildDate = "2024-01-15T10:30:00Z"

	got := Banner()
	want := "cohere 1.2.3\ncommit: abc123def456\nbuilt: 2024-01-15T10:30:00Z\n"
	if got != want {
		t.Fatalf("Banner =\n%q\nwant\n%q", got, want)
	}
	if strings.Contains(got, "message:") {
		t.Fatal("empty GitMessage must be omitted")
	}
}
