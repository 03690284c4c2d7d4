package agentmemory

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %s, want %s", GetVersion(), Version)
	}
	if strings.Count(Version, ".") != 2 {
		t.Errorf("Version %q is not major.minor.patch", Version)
	}
}

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()
	for _, want := range []string{Version, GitCommit, BuildDate} {
		if !strings.Contains(info, want) {
			t.Errorf("BuildInfo() = %q, missing %q", info, want)
		}
	}
}
