package scanner

import (
	"path/filepath"
	"strings"

	"gasguard/internal/ir"
)

var extensionFormats = map[string]ir.Format{
	".rs": ir.FormatSoroban,
	".vy": ir.FormatVyper,
}

// FormatFromPath detects the contract format from the file extension.
// Unrecognized extensions yield ir.FormatUnknown.
func FormatFromPath(path string) ir.Format {
	return extensionFormats[strings.ToLower(filepath.Ext(path))]
}

// Supported reports whether path has a scannable extension.
func Supported(path string) bool {
	return FormatFromPath(path) != ir.FormatUnknown
}
