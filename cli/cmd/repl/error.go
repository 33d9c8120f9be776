package repl

import "github.com/ardnew/twine/lang"

// Sentinel errors.
var (
	ErrOutOfBounds     = lang.NewError("index out of range")
	ErrEditDeclined    = lang.NewError("decline edit")
	ErrNoEngine        = lang.NewError("no template engine")
	ErrUnknownCommand  = lang.NewError("unknown command (try 'help')")
	ErrMissingArgument = lang.NewError("missing argument")
	ErrNoAssign        = lang.NewError("assignments not supported")
)
