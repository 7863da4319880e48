package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// ControlID references a control in an external control catalog
type ControlID string

// Validate checks if the ControlID is valid
func (c ControlID) Validate() error {
	if c == "" {
		return goerr.New("control ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ControlID
func (c ControlID) String() string {
	return string(c)
}

// AssetID references an asset in an external asset inventory
type AssetID string

// Validate checks if the AssetID is valid
func (a AssetID) Validate() error {
	if a == "" {
		return goerr.New("asset ID cannot be empty")
	}
	return nil
}

// String returns the string representation of AssetID
func (a AssetID) String() string {
	return string(a)
}
