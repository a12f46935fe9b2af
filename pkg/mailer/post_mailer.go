package mailer

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/dmitrymomot/forumkit/pkg/forum"
)

// Post notification bodies are authored as html/template sources and
// adapted into templ components, so hosts that render the rest of their
// email with templ can wrap or replace them uniformly.
var (
	postBodyTmpl = template.Must(template.New("post_notification").Parse(`<html><body>
<p>Hi {{.RecipientName}},</p>
<p><strong>{{.AuthorName}}</strong> posted in <strong>{{.TopicTitle}}</strong>:</p>
<blockquote>{{.Content}}</blockquote>
<p>You received this because you follow this topic.</p>
</body></html>`))

	privatePostBodyTmpl = template.Must(template.New("private_post_notification").Parse(`<html><body>
<p>Hi {{.RecipientName}},</p>
<p><strong>{{.AuthorName}}</strong> sent a new message in a private conversation:</p>
<blockquote>{{.Content}}</blockquote>
</body></html>`))
)

type postBodyData struct {
	RecipientName string
	AuthorName    string
	TopicTitle    string
	Content       string
}

// PostMailer composes and sends the forum's notification emails through an
// EmailSender. Topic titles for subjects are resolved through the topic
// repository; user records passed in must already carry email addresses.
type PostMailer struct {
	sender EmailSender
	topics forum.TopicRepository
	users  forum.UserRepository
}

// NewPostMailer creates a PostMailer. The sender is required; topics may be
// nil, in which case subjects fall back to a generic form.
func NewPostMailer(sender EmailSender, topics forum.TopicRepository, users forum.UserRepository) (*PostMailer, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	if users == nil {
		return nil, fmt.Errorf("%w: user repository is required", ErrInvalidConfig)
	}
	return &PostMailer{sender: sender, topics: topics, users: users}, nil
}

// SendPostNotification emails every recipient about a new public post.
// Recipients are emailed individually; a delivery failure aborts and
// propagates, leaving retry policy to the caller.
func (m *PostMailer) SendPostNotification(ctx context.Context, post forum.Post, recipients []forum.User) error {
	title := "a followed topic"
	if m.topics != nil {
		topic, err := m.topics.TopicByID(ctx, post.TopicID)
		if err != nil && !errors.Is(err, forum.ErrTopicNotFound) {
			return err
		}
		if topic != nil {
			title = topic.Title
		}
	}
	subject := fmt.Sprintf("New post in %s", title)

	authorName := m.authorName(ctx, post.AuthorID)
	for _, user := range recipients {
		body, err := m.renderBody(ctx, postBodyTmpl, postBodyData{
			RecipientName: user.Name,
			AuthorName:    authorName,
			TopicTitle:    title,
			Content:       post.Content,
		})
		if err != nil {
			return err
		}
		if err := m.sender.SendEmail(ctx, SendEmailParams{
			SendTo:   user.Email,
			Subject:  subject,
			BodyHTML: body,
			Tag:      "forum-post-notification",
		}); err != nil {
			return err
		}
	}
	return nil
}

// SendPrivatePostNotification emails every recipient about a new private post.
func (m *PostMailer) SendPrivatePostNotification(ctx context.Context, post forum.PrivatePost, recipients []forum.User) error {
	authorName := m.authorName(ctx, post.AuthorID)
	for _, user := range recipients {
		body, err := m.renderBody(ctx, privatePostBodyTmpl, postBodyData{
			RecipientName: user.Name,
			AuthorName:    authorName,
			Content:       post.Content,
		})
		if err != nil {
			return err
		}
		if err := m.sender.SendEmail(ctx, SendEmailParams{
			SendTo:   user.Email,
			Subject:  "New private message",
			BodyHTML: body,
			Tag:      "forum-private-post-notification",
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *PostMailer) renderBody(ctx context.Context, tmpl *template.Template, data postBodyData) (string, error) {
	body, err := Render(ctx, templ.FromGoHTML(tmpl, data))
	if err != nil {
		return "", errors.Join(ErrTemplateRender, err)
	}
	return body, nil
}

// authorName resolves the author's display name, falling back to a neutral
// label when the host user store cannot resolve the ID.
func (m *PostMailer) authorName(ctx context.Context, authorID uuid.UUID) string {
	users, err := m.users.UsersByIDs(ctx, []uuid.UUID{authorID})
	if err != nil || len(users) == 0 {
		return "Someone"
	}
	if users[0].Name == "" {
		return "Someone"
	}
	return users[0].Name
}
