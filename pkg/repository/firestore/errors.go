package firestore

import "github.com/secmon-lab/themis/pkg/domain/interfaces"

// ErrNotFound is returned when the requested document does not exist
var ErrNotFound = interfaces.ErrNotFound
