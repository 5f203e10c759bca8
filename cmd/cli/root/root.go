package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "todo",
	Short:         "Todo API client",
	Long:          "Command line interface for the multi-user Todo API. Set TODO_API_URL to point at a non-local server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
