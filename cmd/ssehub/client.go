package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/ssehub/client"
)

type clientOptions struct {
	cfg client.Config
}

func (o *clientOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.cfg.URL, "url", "http://localhost:8080", "hub base URL")
	f.StringVar(&o.cfg.EventsPath, "events-path", "/events", "event stream path")
	f.DurationVar(&o.cfg.Timeout, "timeout", 0, "publish request timeout (default 10s)")
	f.StringVar(&o.cfg.TLS.CAFile, "ca-file", "", "CA certificate used to verify the hub")
	f.StringVar(&o.cfg.TLS.CertFile, "cert-file", "", "client certificate for mutual TLS")
	f.StringVar(&o.cfg.TLS.KeyFile, "key-file", "", "client key for mutual TLS")
	f.BoolVar(&o.cfg.TLS.SkipVerify, "insecure", false, "skip hub certificate verification")
}

func newPublishCommand() *cobra.Command {
	opts := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "publish <message>...",
		Short: "Publish a message to every subscriber of a running hub",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(opts.cfg)
			if err != nil {
				return err
			}
			if err := c.Publish(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "msg sent")
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}

func newSubscribeCommand() *cobra.Command {
	opts := &clientOptions{}
	var count int
	var showControl bool
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Print messages from a running hub's event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(opts.cfg)
			if err != nil {
				return err
			}
			stream, err := c.Subscribe(cmd.Context())
			if err != nil {
				return err
			}
			defer stream.Close()

			out := cmd.OutOrStdout()
			for printed := 0; count <= 0 || printed < count; {
				ev, err := stream.Next()
				if errors.Is(err, io.EOF) || cmd.Context().Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				if ev.IsControl() && !showControl {
					continue
				}
				if _, err := fmt.Fprintln(out, ev.Data); err != nil {
					return err
				}
				printed++
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many messages (0 streams until the hub closes)")
	cmd.Flags().BoolVar(&showControl, "control", false, "also print connected and ping messages")
	return cmd
}
