package core

import "errors"

var (
	ErrInvalidTheme  = errors.New("theme must be light or dark")
	ErrSelfCaretaker = errors.New("an account cannot be its own caretaker")
)
