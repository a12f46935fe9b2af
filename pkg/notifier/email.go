package notifier

import (
	"context"

	"github.com/dmitrymomot/forumkit/pkg/forum"
	"github.com/dmitrymomot/forumkit/pkg/i18n"
	"github.com/dmitrymomot/forumkit/pkg/mailer"
)

// EmailKey is the email channel's stable preference key.
const EmailKey = "email"

// defaultTranslations carries the built-in English display strings.
const defaultTranslations = `
en:
  notifiers.email.human_name: by email
`

// EmailNotifier delivers notifications through the forum's post mailer.
type EmailNotifier struct {
	mailer     *mailer.PostMailer
	translator *i18n.Translator
}

// NewEmailNotifier creates the email channel. The mailer is required;
// construction fails fast so a misconfigured channel never reaches
// dispatch. A nil translator falls back to the built-in English strings.
func NewEmailNotifier(pm *mailer.PostMailer, translator *i18n.Translator) (*EmailNotifier, error) {
	if pm == nil {
		return nil, ErrNilMailer
	}
	if translator == nil {
		translator = i18n.MustNewTranslator("en", defaultTranslations)
	}
	return &EmailNotifier{mailer: pm, translator: translator}, nil
}

func (n *EmailNotifier) Key() string { return EmailKey }

func (n *EmailNotifier) HumanName() string {
	return n.translator.T("notifiers.email.human_name")
}

func (n *EmailNotifier) NewPost(ctx context.Context, post forum.Post, users []forum.User) error {
	return n.mailer.SendPostNotification(ctx, post, users)
}

func (n *EmailNotifier) NewPrivatePost(ctx context.Context, post forum.PrivatePost, users []forum.User) error {
	return n.mailer.SendPrivatePostNotification(ctx, post, users)
}
