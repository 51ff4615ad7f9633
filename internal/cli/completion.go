package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for algo.

To load completions:

Bash:
  $ source <(algo completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ algo completion bash > /etc/bash_completion.d/algo
  # macOS:
  $ algo completion bash > $(brew --prefix)/etc/bash_completion.d/algo

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ algo completion zsh > "${fpath[1]}/_algo"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ algo completion fish | source

  # To load completions for each session, execute once:
  $ algo completion fish > ~/.config/fish/completions/algo.fish

PowerShell:
  PS> algo completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> algo completion powershell > algo.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}
