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

func cmdReview() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "review",
		Usage: "List risks whose periodic review is due",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			risks, err := uc.Risk.ListRisksForReview(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list risks for review")
			}

			if len(risks) == 0 {
				fmt.Fprintln(os.Stdout, "No risks due for review")
				return nil
			}

			for _, risk := range risks {
				printRisk(risk)
			}
			fmt.Fprintf(os.Stdout, "\n%d risk(s) due for review\n", len(risks))
			return nil
		},
	}
}
