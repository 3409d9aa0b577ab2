package version

import (
	"strings"
	"testing"
)

func TestColored(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.2.3-rc.1"
	if got := Colored(false); got != "1.2.3-rc.1" {
		t.Errorf("plain = %q", got)
	}
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc.1") {
		t.Errorf("colored = %q", got)
	}

	Version = "7"
	if got := Colored(false); got != "7" {
		t.Errorf("short version = %q", got)
	}
}

func TestInfoOptionalFields(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })

	GitCommit, BuildDate = "", ""
	info := Info(false)
	if strings.Contains(info, "commit:") || strings.Contains(info, "built:") {
		t.Errorf("empty fields printed:\n%s", info)
	}
	GitCommit, BuildDate = "abc123", "2024-01-15T10:30:00Z"
	info = Info(false)
	for _, want := range []string{"sdslc " + Version, "commit: abc123", "built:  2024-01-15T10:30:00Z", "go:"} {
		if !strings.Contains(info, want) {
			t.Errorf("info lacks %q:\n%s", want, info)
		}
	}
}
