package observability

import "go.uber.org/zap"

// Field constructors re-exported so callers log through this package
// without importing zap directly.
var (
	String  = zap.String
	Int     = zap.Int
	Bool    = zap.Bool
	Float64 = zap.Float64
	Error   = zap.Error
)
