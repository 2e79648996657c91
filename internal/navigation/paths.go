package navigation

import (
	"path"
	"strings"
)

// Suffixes are the recognized source file extensions, primary first.
var Suffixes = []string{".luau", ".lua"}

// InitSuffixes are the directory-module entry points, primary first.
var InitSuffixes = []string{"/init.luau", "/init.lua"}

// ReservedDirectory can never be required into.
const ReservedDirectory = ".config"

// NormalizePath converts separators to forward slashes and resolves `.`
// and `..` components.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// IsAbsolutePath reports whether p is rooted, either at `/` or at a drive
// letter such as `C:/`.
func IsAbsolutePath(p string) bool {
	p = strings.ReplaceAll(p, `\`, "/")
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/' && isDriveLetter(p[0])
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ModulePath strips the init convention or a source suffix from a file path.
func ModulePath(filePath string) string {
	filePath = strings.ReplaceAll(filePath, `\`, "/")
	if trimmed, ok := trimAny(filePath, InitSuffixes); ok {
		return trimmed
	}
	if trimmed, ok := trimAny(filePath, Suffixes); ok {
		return trimmed
	}
	return filePath
}

// IsInitFile reports whether p names an init.luau or init.lua file.
func IsInitFile(p string) bool {
	_, ok := trimAny(strings.ReplaceAll(p, `\`, "/"), InitSuffixes)
	return ok
}

// HasSourceSuffix reports whether p ends in a recognized source extension.
func HasSourceSuffix(p string) bool {
	_, ok := trimAny(p, Suffixes)
	return ok
}

func trimAny(s string, suffixes []string) (string, bool) {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix), true
		}
	}
	return s, false
}
