package app

import (
	"fmt"
	"runtime/debug"
)

// Release metadata, set with
//
//	-ldflags "-X github.com/tejashwikalptaru/gopulse/internal/app.Version=v0.3.0"
//
// Anything left empty is filled from the VCS stamp Go embeds in the binary.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	Modified  bool
}

// GetVersionInfo merges the linker-provided values with the build info.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withBuildInfo(bi)
	}
	return info
}

func (v VersionInfo) withBuildInfo(bi *debug.BuildInfo) VersionInfo {
	if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.GitCommit == "" {
				v.GitCommit = s.Value
			}
		case "vcs.time":
			if v.BuildTime == "" {
				v.BuildTime = s.Value
			}
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}
	return v
}

// ShortCommit returns the first seven characters of the commit hash.
func (v VersionInfo) ShortCommit() string {
	if len(v.GitCommit) > 7 {
		return v.GitCommit[:7]
	}
	return v.GitCommit
}

// String is the version line shown in the About dialog, e.g. "v0.3.0 (1a2b3c4)".
func (v VersionInfo) String() string {
	commit := v.ShortCommit()
	if commit == "" {
		return v.Version
	}
	if v.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s)", v.Version, commit)
}

// FullString is the version logged at startup.
func (v VersionInfo) FullString() string {
	return fmt.Sprintf("GoPulse %s (commit: %s, built: %s)", v.Version, orUnknown(v.GitCommit), orUnknown(v.BuildTime))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
