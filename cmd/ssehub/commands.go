package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/kbukum/ssehub/version"
)

type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Server-sent events broadcast hub",
		Long: `ssehub fans published messages out to every connected event-stream
and WebSocket client without blocking the publisher. Slow or departed
clients are evicted by a periodic liveness sweep.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(serviceName + " {{.Version}}\n")

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: search cmd/ssehub, config/ and the working directory)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file to load before reading SSEHUB_* variables")

	root.AddCommand(
		newServeCommand(opts),
		newConfigCommand(opts),
		newPublishCommand(),
		newSubscribeCommand(),
		newVersionCommand(),
	)
	return root
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configFile, opts.envFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	var skipValidate bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configFile, opts.envFile)
			if err != nil {
				return err
			}
			if !skipValidate {
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&skipValidate, "no-validate", false, "print the configuration even if it is invalid")
	return cmd
}

func newVersionCommand() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asYAML {
				out, err := yaml.Marshal(info)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print build information as YAML")
	return cmd
}
