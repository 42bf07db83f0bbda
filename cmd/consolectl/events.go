package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gatu-1548/plagio-ia/pkg/events"
	pktNats "github.com/Gatu-1548/plagio-ia/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newEventsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect console events published to NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		subject string
		durable string
	)
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print console events as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.App.NatsURL == "" {
				return fmt.Errorf("NATS_URL is not set")
			}
			sub, err := pktNats.NewSubscriber(a.cfg.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			color.Cyan("Listening on %s (ctrl-c to stop)", subject)
			return sub.Subscribe(cmd.Context(), subject, durable, func(_ context.Context, evt events.Event) error {
				data, _ := json.Marshal(evt.Payload())
				fmt.Printf("%s %s %s\n",
					evt.Timestamp().Format("15:04:05"),
					color.YellowString("%-28s", evt.EventType()),
					data,
				)
				return nil
			})
		},
	}
	tail.Flags().StringVar(&subject, "subject", pktNats.SubjectPrefix+">", "Subject filter")
	tail.Flags().StringVar(&durable, "durable", "", "Durable consumer name (empty for an ephemeral consumer)")
	cmd.AddCommand(tail)
	return cmd
}
