package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/service/notify"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Notify holds CLI flags for Slack notification configuration
type Notify struct {
	botToken string
	channel  string
}

// Flags returns CLI flags for notification configuration
func (x *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (notifications disabled when empty)",
			Category:    "Notification",
			Sources:     cli.EnvVars("THEMIS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for risk register notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("THEMIS_SLACK_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

func (x Notify) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
	)
}

// IsConfigured checks if notification configuration is complete
func (x *Notify) IsConfigured() bool {
	return x.botToken != "" && x.channel != ""
}

// Configure creates the notification service, or returns nil when not
// configured. A token without a channel (or the reverse) is an error.
func (x *Notify) Configure() (notify.Service, error) {
	if x.botToken == "" && x.channel == "" {
		logging.Default().Info("Slack notifications disabled")
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.New("both slack-bot-token and slack-channel are required for notifications")
	}

	svc, err := notify.New(x.botToken, x.channel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Slack notification service")
	}

	logging.Default().Info("Slack notifications enabled", "channel", x.channel)
	return svc, nil
}
