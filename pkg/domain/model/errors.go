package model

import "github.com/m-mizutani/goerr/v2"

// Domain rule errors
var (
	ErrInvalidField      = goerr.New("invalid field value")
	ErrIllegalTransition = goerr.New("illegal state transition")
	ErrAlreadyLinked     = goerr.New("reference is already linked")
	ErrNotLinked         = goerr.New("reference is not linked")
)

// Context keys for error values
const (
	FieldKey = "field"
	ValueKey = "value"
)
