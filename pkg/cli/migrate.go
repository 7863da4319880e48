package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("THEMIS_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("THEMIS_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig()

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// getIndexConfig returns the Firestore composite indexes backing the filtered
// list queries
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "risks",
				Indexes: []fireconf.Index{
					// List with ActiveOnly: active ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// ListRisksForReview: active ASC, next_review_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "next_review_at", Order: fireconf.OrderAscending},
						},
					},
					// Filter by status: active ASC, status ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "status", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// Filter by severity band: active ASC, inherent_severity ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "inherent_severity", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// Filter by category: active ASC, category ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "category", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// Filter by owner: owner.user_id ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "owner.user_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "treatments",
				Indexes: []fireconf.Index{
					// ListByRisk: risk_id ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "risk_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// ListByRisk with activeOnly: active ASC, risk_id ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "risk_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// ListOverdueTreatments: active ASC, due_date ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "due_date", Order: fireconf.OrderAscending},
						},
					},
					// Filter by assignee: active ASC, assignee ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "active", Order: fireconf.OrderAscending},
							{Path: "assignee", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
