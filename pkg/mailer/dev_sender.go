package mailer

import (
	"context"
	"log/slog"
)

// DevSender implements EmailSender for local development. It logs outbound
// notification emails instead of sending them.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development email sender that logs emails.
func NewDevSender(log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

// SendEmail logs the email instead of delivering it.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.log.LogAttrs(ctx, slog.LevelInfo, "Email delivery skipped (dev sender)",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
		slog.Int("body_bytes", len(params.BodyHTML)),
	)
	return nil
}
