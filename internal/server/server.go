// Package server wires module resolution into a language server speaking
// LSP over glsp.
package server

import (
	"errors"
	"sync"

	"github.com/Barocena/luau-lsp/internal/config"
	"github.com/Barocena/luau-lsp/internal/manager"
	"github.com/Barocena/luau-lsp/internal/platform/roblox"
	"github.com/Barocena/luau-lsp/internal/scheduler"
	"github.com/Barocena/luau-lsp/internal/workspace"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const Name = "luau-lsp"

const (
	ClearConfigCacheCommand = "luau-lsp.clearConfigCache"
	ReloadSourcemapCommand  = "luau-lsp.reloadSourcemap"
)

var log = commonlog.GetLogger("luau-lsp.server")

var (
	ErrNotInitialized     = errors.New("server: not initialized")
	ErrDocumentNotManaged = errors.New("server: document is not open")
)

type Server struct {
	fs        afero.Fs
	version   string
	handler   protocol.Handler
	manager   *manager.DocumentManager
	scheduler *scheduler.Scheduler

	mu        sync.RWMutex
	settings  config.Config
	workspace *workspace.FileResolver
	roblox    *roblox.Platform
}

// New creates a server reading the workspace through fs.
func New(fs afero.Fs, version string) *Server {
	s := &Server{
		fs:        fs,
		version:   version,
		manager:   manager.NewDocumentManager(),
		scheduler: scheduler.NewScheduler(64),
		settings:  config.Default(),
	}
	s.handler = protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.textDocumentDidOpen,
		TextDocumentDidChange:          s.textDocumentDidChange,
		TextDocumentDidClose:           s.textDocumentDidClose,
		TextDocumentDocumentLink:       s.textDocumentDocumentLink,
		TextDocumentDefinition:         s.textDocumentDefinition,
		WorkspaceDidChangeWatchedFiles: s.workspaceDidChangeWatchedFiles,
		WorkspaceExecuteCommand:        s.workspaceExecuteCommand,
	}
	s.scheduler.RunScheduler()
	return s
}

func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// RunStdio serves the protocol on stdin and stdout until the client exits.
func (s *Server) RunStdio() error {
	return glspserver.NewServer(&s.handler, Name, false).RunStdio()
}

// Workspace returns the file resolver built by initialize.
func (s *Server) Workspace() (*workspace.FileResolver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.workspace == nil {
		return nil, ErrNotInitialized
	}
	return s.workspace, nil
}

func (s *Server) Settings() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Wait blocks until queued background work has finished.
func (s *Server) Wait() {
	s.scheduler.Wait()
}
