package server

import (
	"fmt"
	"path"

	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/workspace"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// workspaceDidChangeWatchedFiles drops the whole config cache when any
// config file changes, then recomputes the changed directories so their
// diagnostics are current. A sourcemap change reloads the sourcemap.
func (s *Server) workspaceDidChangeWatchedFiles(
	context *glsp.Context,
	params *protocol.DidChangeWatchedFilesParams,
) error {
	ws, err := s.Workspace()
	if err != nil {
		return err
	}

	var changedDirs []string
	cleared := false
	for _, change := range params.Changes {
		p, ok := workspace.FilePath(change.URI)
		if !ok {
			continue
		}

		switch {
		case isConfigFile(path.Base(p)):
			if !cleared {
				ws.ClearConfigCache()
				cleared = true
			}
			if change.Type == protocol.FileChangeTypeDeleted {
				workspace.NotifyClient(context.Notify).PublishDiagnostics(protocol.PublishDiagnosticsParams{
					URI:         change.URI,
					Diagnostics: []protocol.Diagnostic{},
				})
			}
			changedDirs = append(changedDirs, path.Dir(p))

		case s.isSourcemap(p):
			if err := s.reloadSourcemap(); err != nil {
				log.Warningf("%v", err)
			}
		}
	}

	for _, dir := range changedDirs {
		ws.ConfigForDirectory(dir)
	}
	return nil
}

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	switch params.Command {
	case ClearConfigCacheCommand:
		ws, err := s.Workspace()
		if err != nil {
			return nil, err
		}
		ws.ClearConfigCache()
		return nil, s.scheduleConfigWarmUp()

	case ReloadSourcemapCommand:
		return nil, s.reloadSourcemap()
	}
	return nil, fmt.Errorf("unknown command %q", params.Command)
}

func (s *Server) isSourcemap(p string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roblox != nil && navigation.NormalizePath(p) == s.roblox.SourcemapPath()
}

func (s *Server) reloadSourcemap() error {
	s.mu.RLock()
	rbx := s.roblox
	s.mu.RUnlock()
	if rbx == nil {
		return fmt.Errorf("platform %q has no sourcemap", s.Settings().Platform)
	}
	return rbx.Reload()
}
