// Package logger builds configured log/slog loggers for the engine and its
// hosts: JSON or text output, environment presets, and attribute helpers
// that keep record keys (user_id, post_id, notifier, ...) consistent
// across packages.
//
//	log := logger.New(logger.WithProduction("forumkit"))
//	log.LogAttrs(ctx, slog.LevelInfo, "Dispatched notification",
//	    logger.NotifierKey("email"),
//	    logger.PostID(post.ID),
//	)
package logger
