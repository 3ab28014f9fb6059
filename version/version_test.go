package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func override(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBranch, origBuildTime := Version, GitCommit, GitBranch, BuildTime
	Version, GitCommit, GitBranch, BuildTime = version, commit, branch, buildTime
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime = origVersion, origCommit, origBranch, origBuildTime
	})
}

func TestGet_Defaults(t *testing.T) {
	override(t, "dev", "", "", "")

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version dev, got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %s, got %s", runtime.Version(), info.GoVersion)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("unexpected platform %q", info.Platform)
	}
}

func TestGet_LinkTimeValuesWin(t *testing.T) {
	override(t, "1.4.0", "abc1234", "release", "2026-01-02T03:04:05Z")

	info := Get()
	if info.GitCommit != "abc1234" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("expected link-time values, got %+v", info)
	}
}

func TestApplyBuildSettings(t *testing.T) {
	info := Info{Version: "1.0.0"}
	applyBuildSettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-05-06T07:08:09Z"},
	})

	if info.GitCommit != "0123456" {
		t.Errorf("expected short commit, got %q", info.GitCommit)
	}
	if !info.IsDirty {
		t.Error("expected dirty build")
	}
	if info.BuildTime != "2026-05-06T07:08:09Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{Version: "1.0.0", GitBranch: "feature", GoVersion: "go1.26", Platform: "linux/amd64", BuildTime: "T"}
	s := info.String()
	for _, want := range []string{"1.0.0", "(feature)", "go1.26", "linux/amd64", "built T"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
	if strings.Contains(Info{Version: "1", GitBranch: "main"}.String(), "main") {
		t.Error("main branch should be omitted")
	}
}
