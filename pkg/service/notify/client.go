package notify

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/slack-go/slack"
)

// client implements Service backed by the Slack API
type client struct {
	api     *slack.Client
	channel string
}

// Option is a functional option for client configuration
type Option func(*client)

// New creates a Slack-backed notification service posting to the given channel
func New(token, channel string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("notification channel is required")
	}

	c := &client{
		api:     slack.New(token),
		channel: channel,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) post(ctx context.Context, blocks []slack.Block, fallback string) error {
	_, _, err := c.api.PostMessageContext(ctx, c.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("channel", c.channel))
	}
	return nil
}

func (c *client) RiskStatusChanged(ctx context.Context, risk *model.Risk, from types.RiskStatus) error {
	blocks, fallback := buildRiskStatusBlocks(risk, from)
	return c.post(ctx, blocks, fallback)
}

func (c *client) ReviewDue(ctx context.Context, risk *model.Risk) error {
	blocks, fallback := buildReviewDueBlocks(risk)
	return c.post(ctx, blocks, fallback)
}

func (c *client) TreatmentOverdue(ctx context.Context, treatment *model.Treatment, risk *model.Risk) error {
	blocks, fallback := buildTreatmentOverdueBlocks(treatment, risk)
	return c.post(ctx, blocks, fallback)
}

func (c *client) AppetiteExceeded(ctx context.Context, risk *model.Risk, limit types.Severity) error {
	blocks, fallback := buildAppetiteExceededBlocks(risk, limit)
	return c.post(ctx, blocks, fallback)
}
