package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidPolicy     = goerr.New("invalid policy")
	ErrDuplicateCategory = goerr.New("duplicate category")
)

// Context keys for error values
const (
	PolicyPathKey = "policy_path"
	CategoryKey   = "category"
)
