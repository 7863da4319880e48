package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// PolicyFile is the TOML representation of the risk appetite policy
type PolicyFile struct {
	Appetite AppetiteSection `toml:"appetite"`
}

// AppetiteSection declares the tolerated residual severity per category
type AppetiteSection struct {
	Default    string          `toml:"default"`
	Categories []CategoryLimit `toml:"category"`
}

// CategoryLimit overrides the appetite for one risk category
type CategoryLimit struct {
	Category string `toml:"category"`
	Limit    string `toml:"limit"`
}

// Validate checks if the CategoryLimit is valid
func (c *CategoryLimit) Validate() error {
	if _, err := types.ParseRiskCategory(c.Category); err != nil {
		return goerr.Wrap(ErrInvalidPolicy, "unknown category", goerr.V(CategoryKey, c.Category))
	}
	if _, err := types.ParseSeverity(c.Limit); err != nil {
		return goerr.Wrap(ErrInvalidPolicy, "unknown severity limit",
			goerr.V(CategoryKey, c.Category), goerr.V("limit", c.Limit))
	}
	return nil
}

// Validate checks if the PolicyFile is valid
func (p *PolicyFile) Validate() error {
	if p.Appetite.Default != "" {
		if _, err := types.ParseSeverity(p.Appetite.Default); err != nil {
			return goerr.Wrap(ErrInvalidPolicy, "unknown default severity limit",
				goerr.V("limit", p.Appetite.Default))
		}
	}

	seen := make(map[string]bool)
	for _, limit := range p.Appetite.Categories {
		if err := limit.Validate(); err != nil {
			return err
		}
		if seen[limit.Category] {
			return goerr.Wrap(ErrDuplicateCategory, "category appears more than once",
				goerr.V(CategoryKey, limit.Category))
		}
		seen[limit.Category] = true
	}
	return nil
}

// ToAppetitePolicy converts the file into the domain policy
func (p *PolicyFile) ToAppetitePolicy() (*model.AppetitePolicy, error) {
	limits := make(map[types.RiskCategory]types.Severity, len(p.Appetite.Categories))
	for _, limit := range p.Appetite.Categories {
		limits[types.RiskCategory(limit.Category)] = types.Severity(limit.Limit)
	}
	return model.NewAppetitePolicy(types.Severity(p.Appetite.Default), limits)
}

// Policy holds the CLI flag for the policy file path
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to the risk appetite policy TOML file",
			Category:    "Policy",
			Sources:     cli.EnvVars("THEMIS_POLICY"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured policy file path
func (x *Policy) Path() string {
	return x.path
}

// Load reads and validates the policy file. Returns nil without error when no
// path is configured.
func (x *Policy) Load() (*model.AppetitePolicy, error) {
	if x.path == "" {
		return nil, nil
	}

	file, err := LoadPolicyFile(x.path)
	if err != nil {
		return nil, err
	}
	return file.ToAppetitePolicy()
}

// LoadPolicyFile reads and validates a policy TOML file
func LoadPolicyFile(path string) (*PolicyFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V(PolicyPathKey, path))
	}

	var file PolicyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy TOML", goerr.V(PolicyPathKey, path))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "policy validation failed", goerr.V(PolicyPathKey, path))
	}

	return &file, nil
}
