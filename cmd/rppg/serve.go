package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-rppg/internal/stream"
)

type serveParams struct {
	url     string
	subject string
	publish string
}

func (a *app) newServeCmd() *cobra.Command {
	p := serveParams{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Estimate heart rate from colour samples received over NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p.fill(cmd, a.cfg.NATS.URL, a.cfg.NATS.Subject, a.cfg.NATS.Publish)

			opts, err := a.meterOptions(cmd)
			if err != nil {
				return err
			}

			proc, err := stream.NewProcessor(a.logger, opts...)
			if err != nil {
				return err
			}

			nc, err := stream.Connect(p.url, "rppg")
			if err != nil {
				return err
			}
			defer nc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return stream.Serve(ctx, nc, p.subject, p.publish, proc, a.logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.url, "nats", "nats://127.0.0.1:4222", "NATS server URL")
	f.StringVar(&p.subject, "subject", "rppg.samples", "subject carrying colour samples")
	f.StringVar(&p.publish, "publish", "rppg.estimates", "subject receiving estimates")

	return cmd
}

// fill takes configuration values for flags left at their defaults.
func (p *serveParams) fill(cmd *cobra.Command, url, subject, publish string) {
	flags := cmd.Flags()

	if url != "" && !flags.Changed("nats") {
		p.url = url
	}
	if subject != "" && !flags.Changed("subject") {
		p.subject = subject
	}
	if publish != "" && !flags.Changed("publish") {
		p.publish = publish
	}
}
