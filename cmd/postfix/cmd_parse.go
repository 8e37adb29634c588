package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/postfix/java/parser"
	"github.com/dhamidi/postfix/java/syntax"
)

func newParseCmd() *cobra.Command {
	var asJSON bool
	var statements bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a .java file and dump its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read java file: %w", err)
			}

			opts := []parser.Option{parser.WithFile(args[0])}
			var p *parser.Parser
			if statements {
				p = parser.ParseStatements(bytes.NewReader(data), opts...)
			} else {
				p = parser.ParseCompilationUnit(bytes.NewReader(data), opts...)
			}
			node := p.Finish()
			if node == nil {
				return fmt.Errorf("parse java file: no syntax tree")
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(node); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), syntax.Build(data, node).String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	cmd.Flags().BoolVar(&statements, "statements", false, "parse a statement list instead of a compilation unit")

	return cmd
}
