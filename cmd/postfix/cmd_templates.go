package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/postfix/postfix/snippet"
)

func newTemplatesCmd() *cobra.Command {
	var templates string
	var dump bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the registered postfix templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump {
				_, err := cmd.OutOrStdout().Write(snippet.DefaultYAML())
				return err
			}
			cfg, err := snippet.LoadOrDefault(templates)
			if err != nil {
				return err
			}
			for _, r := range snippet.NewManager(cfg).Registrations() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-48s %s\n", r.Metadata.Name, r.Metadata.Description, r.Metadata.Example)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templates, "templates", "", "template config file (.yaml or .toml)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the built-in template config")

	return cmd
}
