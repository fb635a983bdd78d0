package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foldgraph/internal/config"
	"github.com/matzehuels/foldgraph/pkg/errors"
)

// configCommand creates the config command for inspecting settings.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and initialize the configuration file",
		Long: `Show and initialize the configuration file.

Settings are merged from built-in defaults, the TOML config file, FOLDGRAPH_*
environment variables and flags, later sources winning.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.config().Write(c.Out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, p)
			return nil
		},
	})

	cmd.AddCommand(c.configInitCommand())

	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.configPath
			if p == "" {
				var err error
				if p, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(p); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidPath, "%s exists, use --force to overwrite", p)
			}
			if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			f, err := os.Create(p)
			if err != nil {
				return fmt.Errorf("create config file: %w", err)
			}
			defer f.Close()
			if err := c.config().Write(f); err != nil {
				return err
			}
			printSuccess("Wrote config")
			printFile(p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
