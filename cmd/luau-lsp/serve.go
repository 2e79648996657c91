package main

import (
	"runtime"

	"github.com/Barocena/luau-lsp/internal/server"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime.GOMAXPROCS(4)
		log.Infof("starting %s %s", server.Name, Version)
		return server.New(afero.NewOsFs(), Version).RunStdio()
	},
}
