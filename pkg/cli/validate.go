package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var policyCfg config.Policy

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the risk appetite policy file",
		Flags:   policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if policyCfg.Path() == "" {
				return goerr.New("policy file path is required")
			}

			file, err := config.LoadPolicyFile(policyCfg.Path())
			if err != nil {
				return goerr.Wrap(err, "policy validation failed")
			}

			policy, err := file.ToAppetitePolicy()
			if err != nil {
				return goerr.Wrap(err, "policy validation failed")
			}

			logger.Info("Policy validation passed",
				"path", policyCfg.Path(),
				"category_limits", len(file.Appetite.Categories),
			)
			for _, category := range types.AllRiskCategories() {
				if limit, ok := policy.Limit(category); ok {
					logger.Info("Appetite limit", "category", category, "limit", limit)
				}
			}
			return nil
		},
	}
}
