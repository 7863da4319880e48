package memory

import "github.com/secmon-lab/themis/pkg/domain/interfaces"

// ErrNotFound is returned when the requested record does not exist
var ErrNotFound = interfaces.ErrNotFound
