package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdOverdue() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "overdue",
		Usage: "List treatments past their due date",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			treatments, err := uc.Treatment.ListOverdueTreatments(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list overdue treatments")
			}

			if len(treatments) == 0 {
				fmt.Fprintln(os.Stdout, "No overdue treatments")
				return nil
			}

			for _, treatment := range treatments {
				printTreatment(treatment)
			}
			fmt.Fprintf(os.Stdout, "\n%d overdue treatment(s)\n", len(treatments))
			return nil
		},
	}
}
