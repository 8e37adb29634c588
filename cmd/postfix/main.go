package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:           "postfix",
		Short:         "Postfix completion for Java",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbose, path)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newCompleteCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTemplatesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
