package status

import "errors"

var (
	ErrUnknownPolicy = errors.New("status: unknown policy flag")
	ErrNoPoster      = errors.New("status: immunity needs a poster")
)
