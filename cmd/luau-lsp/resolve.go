package main

import (
	"context"
	"fmt"

	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/parser"
	"github.com/Barocena/luau-lsp/internal/platform"
	"github.com/Barocena/luau-lsp/internal/requirer"
	"github.com/Barocena/luau-lsp/internal/workspace"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <requirer-file> [require-path]",
	Short: "Resolve a require path, or every require in a file",
	Long: `Resolve a require-by-string path as if it were required from
<requirer-file>, printing "Success <path>" or "NotFound <fallback>".

Without a require path, every require call in the file is listed with the
module it resolves to.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()
		ws, err := newWorkspace(fs)
		if err != nil {
			return err
		}
		requirerPath := absolute(args[0])
		if len(args) == 2 {
			return resolveOne(cmd, fs, ws, requirerPath, args[1])
		}
		return resolveAll(cmd, fs, ws, requirerPath)
	},
}

func resolveOne(cmd *cobra.Command, fs afero.Fs, ws *workspace.FileResolver, requirerPath, requirePath string) error {
	nav := navigation.NewContext(fs, requirerPath)
	aliases := func(name string) (string, bool) {
		return ws.Config(requirerPath).ResolveAlias(name)
	}

	result, err := requirer.Resolve(nav, requirePath, aliases)
	if err != nil {
		return err
	}
	status := navigation.Success
	if !result.Present {
		status = navigation.NotFound
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", status, result.Path)
	return nil
}

func resolveAll(cmd *cobra.Command, fs afero.Fs, ws *workspace.FileResolver, requirerPath string) error {
	source, err := afero.ReadFile(fs, requirerPath)
	if err != nil {
		return err
	}

	pool := parser.NewParserPool(1)
	defer pool.Close()
	tree, err := pool.Parse(context.Background(), source)
	if err != nil {
		return err
	}
	defer tree.Close()

	calls, err := tree.Requires()
	if err != nil {
		return err
	}

	requirerInfo := &platform.ModuleInfo{Name: ws.ModuleName(workspace.FileURI(requirerPath))}
	out := cmd.OutOrStdout()
	for _, call := range calls {
		start := call.Argument.StartPoint()
		arg := call.Argument.Content(source)
		info, ok := ws.ResolveModule(requirerInfo, platform.Expr{Nodes: call.Argument, Source: source})
		if !ok {
			fmt.Fprintf(out, "%d:%d %s -> unresolved\n", start.Row+1, start.Column+1, arg)
			continue
		}
		optional := ""
		if info.Optional {
			optional = " (optional)"
		}
		fmt.Fprintf(out, "%d:%d %s -> %s%s\n", start.Row+1, start.Column+1, arg, ws.HumanReadableModuleName(info.Name), optional)
	}
	return nil
}
