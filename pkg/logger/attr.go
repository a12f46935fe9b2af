package logger

import "log/slog"

// Attribute helpers keep log record keys consistent across the engine.

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// PostID records the post identifier under the key "post_id".
func PostID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("post_id", id)
}

// TopicID records the topic identifier under the key "topic_id".
func TopicID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("topic_id", id)
}

// NotifierKey records the delivery channel under the key "notifier".
func NotifierKey(key string) slog.Attr {
	return slog.String("notifier", key)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}
