package notify

import (
	"fmt"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/slack-go/slack"
)

func severityEmoji(severity types.Severity) string {
	switch severity {
	case types.SeverityCritical:
		return ":red_circle:"
	case types.SeverityHigh:
		return ":large_orange_circle:"
	case types.SeverityMedium:
		return ":large_yellow_circle:"
	case types.SeverityLow:
		return ":large_green_circle:"
	case types.SeverityNegligible:
		return ":white_circle:"
	default:
		return ":grey_question:"
	}
}

func riskHeadline(risk *model.Risk) string {
	score := risk.InherentScore()
	if residual := risk.ResidualScore(); residual != nil {
		score = *residual
	}
	return fmt.Sprintf("%s *%s* (score %d, %s)",
		severityEmoji(score.Severity()), risk.Name(), score.Value(), score.Severity())
}

func buildRiskStatusBlocks(risk *model.Risk, from types.RiskStatus) ([]slack.Block, string) {
	fallback := fmt.Sprintf("Risk %q moved from %s to %s", risk.Name(), from, risk.Status())

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Risk status changed", false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, riskHeadline(risk), false, false),
			nil, nil,
		),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*From:*\n%s", from), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*To:*\n%s", risk.Status()), false, false),
		}, nil),
	}

	if reduction, ok := risk.ReductionPercentage(); ok {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("Risk reduction: %d%%", reduction), false, false),
		))
	}

	return blocks, fallback
}

func buildReviewDueBlocks(risk *model.Risk) ([]slack.Block, string) {
	fallback := fmt.Sprintf("Risk %q is due for review", risk.Name())

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Risk review due", false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, riskHeadline(risk), false, false),
			nil, nil,
		),
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Category:*\n%s", risk.Category()), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Status:*\n%s", risk.Status()), false, false),
	}
	if owner := risk.Owner(); owner != nil {
		fields = append(fields,
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Owner:*\n%s", owner.Name), false, false))
	}
	if review := risk.Review(); review != nil && review.NextReview() != nil {
		fields = append(fields,
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*Due since:*\n%s", review.NextReview().Format("2006-01-02")), false, false))
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	return blocks, fallback
}

func buildTreatmentOverdueBlocks(treatment *model.Treatment, risk *model.Risk) ([]slack.Block, string) {
	fallback := fmt.Sprintf("Treatment %q for risk %q is overdue", treatment.Name(), risk.Name())

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Type:*\n%s", treatment.Type()), false, false),
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Status:*\n%s (%d%%)", treatment.Status(), treatment.Progress()), false, false),
	}
	if due := treatment.DueDate(); due != nil {
		fields = append(fields,
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*Due date:*\n%s", due.Format("2006-01-02")), false, false))
	}
	if treatment.Assignee() != "" {
		fields = append(fields,
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*Assignee:*\n%s", treatment.Assignee()), false, false))
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Treatment overdue", false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*%s*\n%s", treatment.Name(), riskHeadline(risk)), false, false),
			nil, nil,
		),
		slack.NewSectionBlock(nil, fields, nil),
	}

	return blocks, fallback
}

func buildAppetiteExceededBlocks(risk *model.Risk, limit types.Severity) ([]slack.Block, string) {
	fallback := fmt.Sprintf("Risk %q exceeds the %s appetite for category %s",
		risk.Name(), limit, risk.Category())

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Risk appetite exceeded", false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, riskHeadline(risk), false, false),
			nil, nil,
		),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Category:*\n%s", risk.Category()), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Appetite limit:*\n%s", limit), false, false),
		}, nil),
	}

	return blocks, fallback
}
