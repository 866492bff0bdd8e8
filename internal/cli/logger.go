package cli

import "go.uber.org/zap"

// newDebugLogger builds the verbose-mode logger: sugared zap, JSON encoding,
// debug level, stderr. Returns nil when verbose is off so quiet runs pay
// nothing; every consumer treats a nil logger as a no-op.
func newDebugLogger(verbose bool) *zap.SugaredLogger {
	if !verbose {
		return nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	logger, _ := cfg.Build()
	if logger == nil {
		return nil
	}
	return logger.Sugar().With("app", "codex-ps")
}
