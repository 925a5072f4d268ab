package idxcodec

import "go.uber.org/zap"

// UnknownPolicy controls how map keys that match no field are handled.
type UnknownPolicy int

const (
	UnknownSkip   UnknownPolicy = iota // Discard the value and continue (forward compatible).
	UnknownStrict                      // Reject the map with an unknown_key issue.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrict:
		return "strict"
	default:
		return "skip"
	}
}

// ParseUnknownPolicy maps "skip"/"lenient" and "strict" to a policy.
func ParseUnknownPolicy(s string) (UnknownPolicy, bool) {
	switch s {
	case "", "skip", "lenient", "ignore":
		return UnknownSkip, true
	case "strict":
		return UnknownStrict, true
	}
	return UnknownSkip, false
}

// Options configures a codec. When several are passed, the last one wins.
type Options struct {
	Unknown UnknownPolicy
	// Logger receives debug events (schema bound, unknown keys skipped).
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

func lastOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return opt
}
