// Package logging wraps zap for the cai CLI.
//
// It adds a Trace level below Debug, a redacting encoder that hides secret
// fields and token-shaped values, level-aware sampling that never drops
// errors, and correlation fields carried on the context (trace and span ids,
// session id, run id). Logs go to stderr so stdout stays free for command
// output.
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//	ctx = logging.WithSessionID(ctx, session.ID)
//	logger.Info(ctx, "extracted learnings", zap.Int("count", n))
//
// Library packages take a plain *zap.Logger; pass Logger.Underlying().
package logging
