// Command luau-lsp is a Luau language server and a command line front end
// to its module resolution.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Barocena/luau-lsp/internal/config"
	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/platform"
	"github.com/Barocena/luau-lsp/internal/platform/roblox"
	"github.com/Barocena/luau-lsp/internal/workspace"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

var log = commonlog.GetLogger("luau-lsp")

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "luau-lsp",
	Short:         "Luau language server with require-by-string module resolution",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.CountP("verbose", "v", "increase log verbosity (repeatable)")
	flags.String("platform", config.PlatformStandard, "module platform: standard or roblox")
	flags.String("sourcemap", "sourcemap.json", "Rojo sourcemap, relative to --root (roblox platform)")
	flags.String("root", "", "workspace root (default: current directory)")

	v.SetEnvPrefix("LUAU_LSP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"log-file", "verbose", "platform", "sourcemap", "root"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd, resolveCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func configureLogging() error {
	verbosity := v.GetInt("verbose")
	if logFile := v.GetString("log-file"); logFile != "" {
		commonlog.Configure(verbosity, &logFile)
		return nil
	}
	commonlog.Configure(verbosity, nil)
	return nil
}

// settings collects the server settings from flags and environment.
func settings() (config.Config, error) {
	cfg := config.Default()
	cfg.Platform = v.GetString("platform")
	cfg.Sourcemap = v.GetString("sourcemap")
	cfg.Root = v.GetString("root")
	if cfg.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Config{}, err
		}
		cfg.Root = wd
	}
	cfg.Root = absolute(cfg.Root)
	return cfg, cfg.Validate()
}

// newWorkspace builds a file resolver for one-shot commands. Config
// diagnostics are printed to stderr.
func newWorkspace(fs afero.Fs) (*workspace.FileResolver, error) {
	cfg, err := settings()
	if err != nil {
		return nil, err
	}

	var p platform.Platform = platform.NewStandard(fs)
	if cfg.Platform == config.PlatformRoblox {
		rbx := roblox.New(fs, cfg.Root, cfg.Sourcemap)
		if err := rbx.Reload(); err != nil {
			return nil, err
		}
		p = rbx
	}

	return workspace.NewFileResolver(workspace.Options{
		Fs:       fs,
		Platform: p,
		Client:   stderrClient{},
		Root:     cfg.Root,
	}), nil
}

type stderrClient struct{}

func (stderrClient) PublishDiagnostics(params protocol.PublishDiagnosticsParams) {
	for _, d := range params.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s\n", params.URI, d.Message)
	}
}

func absolute(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return navigation.NormalizePath(filepath.ToSlash(p))
}
