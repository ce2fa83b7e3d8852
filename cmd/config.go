package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the effective configuration",
		Long: `Prints the configuration after merging the defaults, the config file, CGBUILD_* environment
variables and the command line flags.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := resolveProjectDir(cmd)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}

			cfg, err := loadConfig(cmd, projectDir)
			if err != nil {
				return err
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			defer encoder.Close()

			return encoder.Encode(cfg)
		},
	}
}
