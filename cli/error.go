package cli

import "github.com/ardnew/twine/lang"

var (
	ErrInvalidConfig = lang.NewError("invalid configuration file")
	ErrCreateDir     = lang.NewError("create directory")
)
