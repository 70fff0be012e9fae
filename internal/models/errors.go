package models

import "errors"

// Store errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrNotPersisted = errors.New("failed to persist report data")
)
