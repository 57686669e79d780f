package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jsondiff configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var output string
	get := &cobra.Command{
		Use:   "get",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := renderConfig(opts.cfg, output)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
	get.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.configPath == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "(defaults; create %s to override)\n", defaultConfigPath())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the user config file",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationDefaultsOnly: "true",
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := opts.configFile
			if target == "" {
				target = defaultConfigPath()
			}
			if err := writeDefaultConfig(target, force); err != nil {
				return err
			}
			infof(cmd, "wrote %s", target)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(get, path, initCmd)
	return cmd
}
