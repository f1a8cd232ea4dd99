package fs

import (
	"runtime"
	"strings"
	"unicode"
)

// NormalizeVolumePath turns drive letters such as "C:" or "c:\" into the raw
// volume form \\.\C: on Windows. Any other path is returned unchanged.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}

	path = strings.ReplaceAll(strings.TrimSpace(path), "/", `\`)
	if IsRawVolume(path) {
		return strings.ToUpper(path)
	}

	trimmed := strings.TrimSuffix(path, `\`)
	if len(trimmed) == 2 && trimmed[1] == ':' && unicode.IsLetter(rune(trimmed[0])) {
		return `\\.\` + strings.ToUpper(trimmed)
	}
	return path
}

// IsRawVolume reports whether path uses the \\.\ device namespace.
func IsRawVolume(path string) bool {
	return strings.HasPrefix(path, `\\.\`)
}
