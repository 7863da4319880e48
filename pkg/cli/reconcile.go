package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/secmon-lab/themis/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdReconcile() *cli.Command {
	var repoCfg config.Repository
	var actorID string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "actor",
			Usage:       "User ID recorded on reconciled risks",
			Value:       "system:reconcile",
			Sources:     cli.EnvVars("THEMIS_RECONCILE_ACTOR"),
			Destination: &actorID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "reconcile",
		Usage: "Re-derive risk statuses from their treatments",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			if err := uc.Risk.ReconcileAll(ctx, actorID); err != nil {
				return goerr.Wrap(err, "reconciliation failed")
			}

			logging.Default().Info("Reconciliation completed")
			return nil
		},
	}
}
