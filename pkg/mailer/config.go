package mailer

// Config holds email delivery configuration.
// PostmarkServerToken and PostmarkAccountToken are optional to support
// development environments where email sending is disabled (see DevSender).
// SenderEmail and ReplyToEmail establish the sender identity and reply
// behavior for all outbound forum notifications.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"FORUM_SENDER_EMAIL,required"`
	ReplyToEmail         string `env:"FORUM_REPLY_TO_EMAIL,required"`
}
