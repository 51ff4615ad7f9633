package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/algorithmia/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The logger is attached to the command context before any subcommand runs
// and is available through loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "algo",
		Short:        "algo calls Algorithmia algorithms and manages hosted data",
		Long:         `algo is a command-line client for the Algorithmia API. It runs hosted algorithms with JSON, text or binary input and reads and writes files in the Algorithmia data store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.apiKey, "api-key", "", "API key (overrides config and ALGORITHMIA_API_KEY)")
	flags.StringVar(&c.apiAddress, "api-address", "", "API base URL (overrides config and ALGORITHMIA_API)")
	flags.StringVarP(&c.profile, "profile", "p", "", "config profile to use (default \"default\")")
	flags.StringVar(&c.configPath, "config", "", "config file path")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the algorithm result cache")
	flags.StringVar(&c.redisAddr, "redis", "", "cache results in Redis at host:port")
	flags.IntVar(&c.retries, "retries", -1, "retries after a network failure (default from config)")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.dataCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
