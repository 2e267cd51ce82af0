package ffmpeg

import "errors"

// ErrToolUnavailable means the ffmpeg binary could not be executed. Callers
// degrade (raw bytes, empty windows) instead of aborting the run.
var ErrToolUnavailable = errors.New("ffmpeg unavailable")
