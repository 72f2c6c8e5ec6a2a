package buildinfo

import (
	"runtime/debug"
	"testing"
)

func stamp(t *testing.T, version, commit string, settings ...debug.BuildSetting) {
	t.Helper()
	oldV, oldC, oldRead := Version, Commit, readBuildInfo
	t.Cleanup(func() { Version, Commit, readBuildInfo = oldV, oldC, oldRead })
	Version, Commit = version, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		settings []debug.BuildSetting
		want     string
	}{
		{"version wins", "v1.2.0", "abc", nil, "v1.2.0"},
		{"commit", "dev", "0123456789abcdef", nil, "0123456789ab"},
		{"vcs", "dev", "unknown", []debug.BuildSetting{{Key: "vcs.revision", Value: "fedcba9876543210"}}, "fedcba987654"},
		{"vcs dirty", "dev", "unknown", []debug.BuildSetting{
			{Key: "vcs.revision", Value: "fedcba9876543210"},
			{Key: "vcs.modified", Value: "true"},
		}, "fedcba987654+dirty"},
		{"nothing", "dev", "unknown", nil, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.version, tt.commit, tt.settings...)
			if got := Short(); got != tt.want {
				t.Fatalf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}
