package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "libris-match",
		Short: "Bibliographic record matching engine",
		Long: `libris-match scores bibliographic query records against a frozen
reference corpus, classifies each as no-match / unique-match / multiple-matches,
and writes the resulting outcome rows for downstream review.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
