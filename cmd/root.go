package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "radassist",
		Short: "AI radio-diagnosis assistant",
		Long: `radassist serves a browser interface for uploading a medical scan with clinical notes
and receiving a structured diagnostic report from a vision-capable LLM.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())

	return cmd
}
