package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/postfix/java/codebase"
	"github.com/dhamidi/postfix/postfix/snippet"
)

func newLSPCmd() *cobra.Command {
	var templates string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := snippet.LoadOrDefault(templates); err != nil {
				return err
			}
			server := codebase.NewLSPServer(version, templates)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&templates, "templates", "", "template config file (.yaml or .toml), reloaded on change")

	return cmd
}
