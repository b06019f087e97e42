package domain

import "errors"

var (
	ErrEmptyPools      = errors.New("tile pools are empty")
	ErrDuplicateValue  = errors.New("tile value appears more than once in pools")
	ErrPoolsNotFound   = errors.New("tile pools not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrTileNotFound    = errors.New("tile not found")
	ErrFlipRejected    = errors.New("flip rejected")
	ErrEntryNotFound   = errors.New("game entry not found")
)
