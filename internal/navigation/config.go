package navigation

import (
	"fmt"
	"path"

	"github.com/Barocena/luau-lsp/internal/luauconfig"

	"github.com/spf13/afero"
)

// ConfigStatus describes which configuration files exist in a directory.
type ConfigStatus int

const (
	ConfigAbsent ConfigStatus = iota
	ConfigAmbiguous
	ConfigPresentPrimary // .luaurc
	ConfigPresentLegacy  // .robloxrc
)

func (s ConfigStatus) String() string {
	switch s {
	case ConfigAbsent:
		return "Absent"
	case ConfigAmbiguous:
		return "Ambiguous"
	case ConfigPresentPrimary:
		return "PresentPrimary"
	case ConfigPresentLegacy:
		return "PresentLegacy"
	}
	return fmt.Sprintf("ConfigStatus(%d)", int(s))
}

// StatusOf inspects dir for the primary and legacy configuration files.
// Both the navigation context and the workspace config cascade use it, so
// the two agree on what counts as ambiguous.
func StatusOf(fs afero.Fs, dir string) ConfigStatus {
	primary := isFile(fs, path.Join(dir, luauconfig.ConfigName))
	legacy := isFile(fs, path.Join(dir, luauconfig.LegacyConfigName))

	switch {
	case primary && legacy:
		return ConfigAmbiguous
	case primary:
		return ConfigPresentPrimary
	case legacy:
		return ConfigPresentLegacy
	}
	return ConfigAbsent
}

func isFile(fs afero.Fs, p string) bool {
	info, err := fs.Stat(p)
	return err == nil && !info.IsDir()
}

func isDirectory(fs afero.Fs, p string) bool {
	ok, err := afero.IsDir(fs, p)
	return err == nil && ok
}
