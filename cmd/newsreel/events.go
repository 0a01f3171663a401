package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammad-safakhou/newsreel/internal/queue/streams"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/spf13/cobra"
)

func eventsCMD(opts *rootOptions) *cobra.Command {
	var (
		group string
		all   bool
	)
	var events = &cobra.Command{
		Use:   "events",
		Short: "Follow render events from the Redis stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.redis == nil {
				return fmt.Errorf("redis not configured (storage.redis.host)")
			}

			stream := a.cfg.Storage.Redis.Stream
			start := "$"
			if all {
				start = "0"
			}
			if err := streams.EnsureGroup(ctx, a.redis, stream, group, start); err != nil {
				return err
			}
			host, _ := os.Hostname()
			consumer := streams.NewConsumer(a.redis, group, fmt.Sprintf("%s-%d", host, os.Getpid()))
			out := cmd.OutOrStdout()
			for ctx.Err() == nil {
				msgs, err := consumer.Read(ctx, stream, streams.WithBlock(5*time.Second), streams.WithCount(20))
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				ids := make([]string, 0, len(msgs))
				for _, m := range msgs {
					ids = append(ids, m.ID)
					env := m.Envelope
					rec, err := env.Render()
					if err != nil {
						fmt.Fprintf(out, "%s %-17s session=%s %s\n", env.OccurredAt.Format(time.RFC3339), env.EventType, env.SessionID, env.Data)
						continue
					}
					detail := fmt.Sprintf("%ds %d words", int(rec.Duration.Seconds()), rec.Words)
					if rec.Status == models.RenderFailed {
						detail = fmt.Sprintf("%s: %s", rec.FailedStage, rec.Error)
					}
					fmt.Fprintf(out, "%s %-17s session=%s %q %s\n", env.OccurredAt.Format(time.RFC3339), env.EventType, env.SessionID, rec.Headline, detail)
				}
				if err := consumer.Ack(ctx, stream, ids...); err != nil {
					return err
				}
			}
			return nil
		},
	}
	events.Flags().StringVar(&group, "group", "newsreel-cli", "consumer group")
	events.Flags().BoolVar(&all, "all", false, "start from the beginning of the stream when the group is new")
	return events
}
