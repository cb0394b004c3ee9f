package components

import "errors"

var (
	ErrNegativeAmount = errors.New("components: negative amount")
	ErrDetached       = errors.New("components: behavior is not attached to a host")
)
