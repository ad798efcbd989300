package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var showPath bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration relink runs with, after applying the config file
and command-line flags, in the config file's TOML format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				path := c.flags.configPath
				if path == "" {
					path = config.Path()
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			}
			e, err := c.setup()
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(e.cfg)
		},
	}

	cmd.Flags().BoolVar(&showPath, "path", false, "print the config file location instead")

	return cmd
}
