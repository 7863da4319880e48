package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// AppetitePolicy declares the highest residual severity the organization
// tolerates per category. Categories without an entry fall back to the
// default limit; an empty default tolerates everything.
type AppetitePolicy struct {
	defaultLimit types.Severity
	limits       map[types.RiskCategory]types.Severity
}

// NewAppetitePolicy builds a policy from a default limit and per-category
// overrides. Unknown categories or severities fail.
func NewAppetitePolicy(defaultLimit types.Severity, limits map[types.RiskCategory]types.Severity) (*AppetitePolicy, error) {
	if defaultLimit != "" && !defaultLimit.IsValid() {
		return nil, goerr.Wrap(ErrInvalidField, "unknown severity",
			goerr.V(FieldKey, "defaultLimit"), goerr.V(ValueKey, defaultLimit))
	}

	p := &AppetitePolicy{
		defaultLimit: defaultLimit,
		limits:       make(map[types.RiskCategory]types.Severity, len(limits)),
	}
	for category, severity := range limits {
		if !category.IsValid() {
			return nil, goerr.Wrap(ErrInvalidField, "unknown risk category",
				goerr.V(FieldKey, "category"), goerr.V(ValueKey, category))
		}
		if !severity.IsValid() {
			return nil, goerr.Wrap(ErrInvalidField, "unknown severity",
				goerr.V(FieldKey, "severity"), goerr.V(ValueKey, severity))
		}
		p.limits[category] = severity
	}
	return p, nil
}

// Limit returns the residual severity limit for the category, falling back to
// the default. The second return is false when no limit applies.
func (p *AppetitePolicy) Limit(category types.RiskCategory) (types.Severity, bool) {
	if limit, ok := p.limits[category]; ok {
		return limit, true
	}
	if p.defaultLimit != "" {
		return p.defaultLimit, true
	}
	return "", false
}

// Exceeded reports whether the risk's residual severity is worse than the
// appetite for its category. Risks without a residual assessment are judged
// by their inherent severity.
func (p *AppetitePolicy) Exceeded(risk *Risk) (types.Severity, bool) {
	limit, ok := p.Limit(risk.Category())
	if !ok {
		return "", false
	}

	severity := risk.InherentScore().Severity()
	if residual := risk.ResidualScore(); residual != nil {
		severity = residual.Severity()
	}

	if severity.Rank() > limit.Rank() {
		return limit, true
	}
	return "", false
}
