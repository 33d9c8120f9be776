package cmd

import "github.com/ardnew/twine/lang"

var (
	ErrReadData          = lang.NewError("read data file")
	ErrInvalidAssignment = lang.NewError("invalid assignment (expected NAME=EXPR)")
	ErrEvalExpr          = lang.NewError("evaluate expression")
	ErrWriteOutput       = lang.NewError("write output")
	ErrNoStore           = lang.NewError("no template store (use --db)")
	ErrCheckFailed       = lang.NewError("template check failed")
	ErrImportFailed      = lang.NewError("template import incomplete")
)

var (
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
