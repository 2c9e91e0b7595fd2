package models

import "errors"

// ErrNotFound is returned by stores when the requested user or checklist item does not exist
var ErrNotFound = errors.New("not found")
