package store

import "github.com/ardnew/twine/lang"

var (
	ErrOpen            = lang.NewError("open template store")
	ErrQuery           = lang.NewError("query template store")
	ErrInvalidName     = lang.NewError("invalid template name")
	ErrInvalidTemplate = lang.NewError("invalid template")
)
