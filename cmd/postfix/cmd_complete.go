package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/postfix/java/codebase"
	"github.com/dhamidi/postfix/java/syntax"
	"github.com/dhamidi/postfix/postfix"
	"github.com/dhamidi/postfix/postfix/snippet"
)

type completionOutput struct {
	Label    string `json:"label"`
	Detail   string `json:"detail,omitempty"`
	Example  string `json:"example,omitempty"`
	Snippet  string `json:"snippet"`
	Replace  string `json:"replace"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Provider string `json:"provider"`
}

func newCompleteCmd() *cobra.Command {
	var templates string
	var force bool
	var asJSON bool
	var statements bool

	cmd := &cobra.Command{
		Use:   "complete <file> <line:column>",
		Short: "List the postfix templates available at a position",
		Long: `List the postfix templates available at a position.

The position is 1-based and points right after the typed template name,
as in "x > 0.if". Columns count bytes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read java file: %w", err)
			}
			line, column, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			cfg, err := snippet.LoadOrDefault(templates)
			if err != nil {
				return err
			}

			req := codebase.Request{File: args[0], Line: line, Column: column, Force: force}
			if statements {
				req.Parse = syntax.ParseStatements
			}
			proposals, err := codebase.Complete(snippet.NewManager(cfg), data, req)
			if err != nil {
				return err
			}

			out := make([]completionOutput, 0, len(proposals))
			for _, p := range proposals {
				out = append(out, toCompletionOutput(data, p))
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, o := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s-%s %q -> %q\n", o.Label, o.Start, o.End, o.Replace, o.Snippet)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templates, "templates", "", "template config file (.yaml or .toml)")
	cmd.Flags().BoolVar(&force, "force", false, "behave like explicitly invoked completion")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print proposals as JSON")
	cmd.Flags().BoolVar(&statements, "statements", false, "parse the file as a statement list instead of a compilation unit")

	return cmd
}

func toCompletionOutput(src []byte, p postfix.Proposal) completionOutput {
	return completionOutput{
		Label:    p.Label,
		Detail:   p.Detail,
		Example:  p.Documentation,
		Snippet:  p.Snippet,
		Replace:  string(src[p.Replace.Start.Offset:p.Replace.End.Offset]),
		Start:    p.Replace.Start.String(),
		End:      p.Replace.End.String(),
		Provider: p.Provider,
	}
}

// parsePosition reads LINE:COLUMN.
func parsePosition(s string) (int, int, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("position %q: want LINE:COLUMN", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("position %q: invalid line", s)
	}
	column, err := strconv.Atoi(colStr)
	if err != nil || column < 1 {
		return 0, 0, fmt.Errorf("position %q: invalid column", s)
	}
	return line, column, nil
}
