package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func severityColor(severity types.Severity) *color.Color {
	switch severity {
	case types.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case types.SeverityHigh:
		return color.New(color.FgRed)
	case types.SeverityMedium:
		return color.New(color.FgYellow)
	case types.SeverityLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func printRisk(risk *model.Risk) {
	score := risk.InherentScore()
	if residual := risk.ResidualScore(); residual != nil {
		score = *residual
	}

	severity := severityColor(score.Severity()).Sprintf("%-10s", score.Severity())
	fmt.Fprintf(os.Stdout, "%s  %2d  %-12s  %-12s  %s\n",
		severity, score.Value(), risk.Status(), risk.Category(), risk.Name())

	if review := risk.Review(); review != nil && review.NextReview() != nil {
		fmt.Fprintf(os.Stdout, "%-10s       review due since %s\n",
			"", review.NextReview().Format("2006-01-02"))
	}
}

func printTreatment(treatment *model.Treatment) {
	due := "-"
	if d := treatment.DueDate(); d != nil {
		due = d.Format("2006-01-02")
	}
	assignee := treatment.Assignee()
	if assignee == "" {
		assignee = "-"
	}

	fmt.Fprintf(os.Stdout, "%-10s  %3d%%  due %-10s  %-12s  %s\n",
		treatment.Type(), treatment.Progress(), due, assignee, treatment.Name())
}
