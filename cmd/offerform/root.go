package main

import (
	"github.com/spf13/cobra"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "offerform/skip-config"

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "offerform",
		Short:         "Collect, validate and store business offer profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return a.load()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"config file (default offerform.yaml in ., ./configs or $HOME/.offerform)")

	root.AddCommand(
		newFillCmd(a),
		newServeCmd(a),
		newShowCmd(a),
		newSummarizeCmd(a),
		newAnalyzeCmd(a),
		newFormCmd(a),
		newSchemaCmd(a),
		newLintCmd(),
	)
	return root
}
