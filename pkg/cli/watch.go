package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/service/worker"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/secmon-lab/themis/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdWatch() *cli.Command {
	var repoCfg config.Repository
	var notifyCfg config.Notify
	var policyCfg config.Policy
	var interval time.Duration

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "Sweep interval for the reminder worker",
			Value:       time.Hour,
			Sources:     cli.EnvVars("THEMIS_WATCH_INTERVAL"),
			Destination: &interval,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "watch",
		Usage: "Run the review reminder worker until interrupted",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			notifier, err := notifyCfg.Configure()
			if err != nil {
				return err
			}
			if notifier == nil {
				return goerr.New("watch requires Slack notification configuration")
			}

			policy, err := policyCfg.Load()
			if err != nil {
				return err
			}
			if policy == nil {
				logging.Default().Info("No policy configured, appetite checks disabled")
			}

			uc := usecase.New(repo, usecase.WithNotifier(notifier))

			w := worker.NewReviewReminderWorker(uc, notifier, policy, interval)
			if err := w.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start reminder worker")
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logging.Default().Info("Received shutdown signal", "signal", sig)

			w.Stop()
			return nil
		},
	}
}
