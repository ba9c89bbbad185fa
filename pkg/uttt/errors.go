package uttt

import "github.com/pkg/errors"

// Errors returned by the rule engine, always wrapped with the offending
// move or notation, check them with errors.Is
var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrInvalidNotation = errors.New("invalid notation")
)
