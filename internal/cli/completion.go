package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for relink.

Bash:
  $ source <(relink completion bash)

  # To load completions for each session, execute once:
  $ relink completion bash > /usr/share/bash-completion/completions/relink

Zsh:
  $ relink completion zsh > "${fpath[1]}/_relink"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ relink completion fish > ~/.config/fish/completions/relink.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish"},
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
			}
			return nil
		},
	}

	return cmd
}
