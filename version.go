package main

import (
	"fmt"
	"runtime/debug"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// Version of the spf binary.
var Version = "unknown"

func init() {
	// The extension version is the source of truth; the VCS revision is
	// appended when the Go toolchain knows it.
	info, ok := debug.ReadBuildInfo()
	if !ok {
		Version = fmt.Sprintf("v%s-unknown", search.Version)
		return
	}

	// Find the commit that this build is on.
	rev := "unknown"
	dirty := false
	for _, kv := range info.Settings {
		if kv.Key == "vcs.revision" {
			// Just use the short commit ID
			rev = kv.Value[:7]
		} else if kv.Key == "vcs.modified" {
			dirty = kv.Value == "true"
		}
	}

	dirtyStr := ""
	if dirty {
		dirtyStr = "-dirty"
	}
	Version = fmt.Sprintf("v%s-%s%s", search.Version, rev, dirtyStr)
}
