package config

import "errors"

// ErrInvalidWeights means the checklist weight table is malformed. It is the
// one fatal error class: callers must not start a run with a broken table.
var ErrInvalidWeights = errors.New("invalid checklist weights")
