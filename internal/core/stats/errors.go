package stats

import "errors"

var (
	ErrUnknownTier     = errors.New("stats: unknown tier")
	ErrUnknownPwnOp    = errors.New("stats: unknown pwner operation")
	ErrScriptNoResult  = errors.New("stats: script did not assign a numeric result")
	ErrUnknownStrategy = errors.New("stats: unknown stacking strategy")
)
