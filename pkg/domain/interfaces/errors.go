package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repositories when the requested record does not
// exist. Implementations wrap it with their own context.
var ErrNotFound = goerr.New("record not found")
