package main

import (
	"encoding/json"
	"fmt"

	"github.com/Barocena/luau-lsp/internal/luauconfig"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config <file-or-directory>",
	Short: "Print the effective Luau configuration as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()
		ws, err := newWorkspace(fs)
		if err != nil {
			return err
		}

		target := absolute(args[0])
		isDir, err := afero.IsDir(fs, target)
		if err != nil {
			return err
		}
		var cfg luauconfig.Config
		if isDir {
			cfg = ws.ConfigForDirectory(target)
		} else {
			cfg = ws.Config(target)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
