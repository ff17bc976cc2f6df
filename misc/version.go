// Package misc keeps build time information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set at build time with -ldflags "-X mdjt/misc.version=... -X mdjt/misc.buildHash=...".
var (
	version   = "dev"
	buildHash = "unknown"
)

// appName is used when executable name cannot be determined or was renamed to
// something unrecognizable.
const appName = "mdbook-json-table"

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return buildHash
}

// GetAppName returns program name. mdBook locates preprocessors by executable
// name, so when binary was renamed (mdbook-<name>) we follow the rename.
func GetAppName() string {
	if len(os.Args) == 0 {
		return appName
	}
	name := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
	if !strings.HasPrefix(name, "mdbook-") {
		return appName
	}
	return name
}

// GetPreprocessorName returns name under which mdBook configuration refers
// to this preprocessor ([preprocessor.<name>] table in book.toml).
func GetPreprocessorName() string {
	return strings.TrimPrefix(GetAppName(), "mdbook-")
}
