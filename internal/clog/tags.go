package clog

// Tag names label each kind of tuner event as a PrettyHandler bracket
// label instead of a raw ANSI string baked into call sites.
const (
	TagFull    = "===="
	TagHead    = "----"
	TagRun     = "RUN"
	TagInfo    = "INFO"
	TagOK      = "OK"
	TagWarning = "WARNING"
	TagFailure = "FAILED"
	TagResult  = "RESULT"
	TagBest    = "BEST"
)

const tagKey = "tag"

// Run logs the start of a kernel evaluation.
func Run(l Logger, msg string, args ...any) {
	l.Info(msg, append(args, tagKey, TagRun)...)
}

// OK logs a completed, successful kernel evaluation.
func OK(l Logger, msg string, args ...any) {
	l.Info(msg, append(args, tagKey, TagOK)...)
}

// Warning logs a verification mismatch that still produced a time.
func Warning(l Logger, msg string, args ...any) {
	l.Warn(msg, append(args, tagKey, TagWarning)...)
}

// Failure logs a kernel that failed to compile, launch, or run.
func Failure(l Logger, msg string, args ...any) {
	l.Error(msg, append(args, tagKey, TagFailure)...)
}

// Result logs one line of a completed evaluation's timing.
func Result(l Logger, msg string, args ...any) {
	l.Info(msg, append(args, tagKey, TagResult)...)
}

// Best logs the overall best configuration found by a Tune run.
func Best(l Logger, msg string, args ...any) {
	l.Info(msg, append(args, tagKey, TagBest)...)
}

// Head logs a section header.
func Head(l Logger, msg string, args ...any) {
	l.Info(msg, append(args, tagKey, TagHead)...)
}
