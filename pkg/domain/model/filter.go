package model

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// RiskFilter narrows risk queries. Zero-valued fields match everything.
// Severity matches the inherent severity band. ReviewDueAt matches risks whose
// next review date is at or before the given time; callers resolve "now" so
// repositories never consult a wall clock.
type RiskFilter struct {
	Category    types.RiskCategory
	Status      types.RiskStatus
	Severity    types.Severity
	OwnerID     string
	ControlID   types.ControlID
	AssetID     types.AssetID
	Tag         string
	ReviewDueAt *time.Time
	ActiveOnly  bool
	Limit       int
	Offset      int
}

// TreatmentFilter narrows treatment queries. Zero-valued fields match
// everything. OverdueAt matches treatments whose due date is strictly before
// the given time and whose status still counts as pending.
type TreatmentFilter struct {
	RiskID     RiskID
	Status     types.TreatmentStatus
	Type       types.TreatmentType
	Assignee   string
	OverdueAt  *time.Time
	ActiveOnly bool
	Limit      int
	Offset     int
}
