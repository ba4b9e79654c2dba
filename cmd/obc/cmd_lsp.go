package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/obc/lsp"
	"github.com/dhamidi/obc/project"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Load()
			if err != nil {
				return err
			}
			fe, err := proj.Frontend()
			if err != nil {
				return err
			}
			server := lsp.NewServer(version, fe)
			return server.RunStdio()
		},
	}
}
