package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdStats() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "stats",
		Usage: "Show a summary of the active risk register",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			overview, err := uc.Stats.Overview(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to build registry overview")
			}

			fmt.Fprintf(os.Stdout, "Active risks: %d\n\n", overview.TotalRisks)

			fmt.Fprintln(os.Stdout, "By severity:")
			for _, severity := range types.AllSeverities() {
				label := severityColor(severity).Sprintf("%-10s", severity)
				fmt.Fprintf(os.Stdout, "  %s %d\n", label, overview.RisksBySeverity[severity])
			}

			fmt.Fprintln(os.Stdout, "\nBy status:")
			for _, status := range types.AllRiskStatuses() {
				fmt.Fprintf(os.Stdout, "  %-12s %d\n", status, overview.RisksByStatus[status])
			}

			fmt.Fprintf(os.Stdout, "\nDue for review:     %d\n", overview.RisksDueForReview)
			fmt.Fprintf(os.Stdout, "Overdue treatments: %d\n", overview.OverdueTreatments)
			return nil
		},
	}
}
