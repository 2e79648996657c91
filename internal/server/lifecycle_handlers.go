package server

import (
	"context"
	"fmt"
	"path"

	"github.com/Barocena/luau-lsp/internal/config"
	"github.com/Barocena/luau-lsp/internal/luauconfig"
	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/platform"
	"github.com/Barocena/luau-lsp/internal/platform/roblox"
	"github.com/Barocena/luau-lsp/internal/scanner"
	"github.com/Barocena/luau-lsp/internal/scheduler"
	"github.com/Barocena/luau-lsp/internal/workspace"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	settings, err := config.Load(params.InitializationOptions)
	if err != nil {
		return nil, fmt.Errorf("invalid initializationOptions: %w", err)
	}
	if settings.Root == "" {
		settings.Root = rootPath(params)
	}
	log.Infof("initializing %s (platform %s, root %s)", Name, settings.Platform, settings.Root)

	var p platform.Platform
	var rbx *roblox.Platform
	switch settings.Platform {
	case config.PlatformRoblox:
		rbx = roblox.New(s.fs, settings.Root, settings.Sourcemap)
		if err := rbx.Reload(); err != nil {
			log.Warningf("%v", err)
		}
		p = rbx
	default:
		p = platform.NewStandard(s.fs)
	}

	ws := workspace.NewFileResolver(workspace.Options{
		Fs:        s.fs,
		Platform:  p,
		Documents: s.manager,
		Client:    workspace.NotifyClient(context.Notify),
		Root:      settings.Root,
	})

	s.mu.Lock()
	s.settings = settings
	s.workspace = ws
	s.roblox = rbx
	s.mu.Unlock()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.DocumentLinkProvider = &protocol.DocumentLinkOptions{}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{ClearConfigCacheCommand, ReloadSourcemapCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &s.version,
		},
	}, nil
}

// initialized queues a walk of the workspace computing the configuration
// of every directory holding a config file, so broken files are reported
// before anything requires a module under them.
func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Infof("client initialized")
	return s.scheduleConfigWarmUp()
}

func (s *Server) scheduleConfigWarmUp() error {
	ws, err := s.Workspace()
	if err != nil {
		return err
	}
	settings := s.Settings()
	if settings.Root == "" {
		return nil
	}

	return s.scheduler.Schedule(scheduler.Task{
		Name: "config warm-up",
		Execute: func(ctx context.Context) error {
			count := 0
			err := scanner.Scan(ctx, s.fs, settings.Root, settings.Ignored, isConfigFile, func(p string) {
				ws.ConfigForDirectory(path.Dir(navigation.NormalizePath(p)))
				count++
			})
			log.Infof("warmed %d config files under %s", count, settings.Root)
			return err
		},
	})
}

func (s *Server) shutdown(context *glsp.Context) error {
	log.Infof("shutting down")
	s.scheduler.StopScheduler()
	return s.manager.CloseAll()
}

func (s *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func rootPath(params *protocol.InitializeParams) string {
	if params.RootURI != nil {
		if p, ok := workspace.FilePath(*params.RootURI); ok {
			return p
		}
	}
	if params.RootPath != nil && *params.RootPath != "" {
		return navigation.NormalizePath(*params.RootPath)
	}
	return ""
}

func isConfigFile(name string) bool {
	return name == luauconfig.ConfigName || name == luauconfig.LegacyConfigName
}
