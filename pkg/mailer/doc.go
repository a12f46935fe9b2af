// Package mailer is the email delivery boundary for forum notifications.
//
// EmailSender abstracts the transport: NewPostmarkClient for production
// (fails fast on missing tokens), NewDevSender for development (logs
// instead of sending). PostMailer sits above the transport and composes
// the two notification emails the engine sends: new public post to topic
// followers and new private post to conversation members.
//
// Bodies are authored as html/template sources and adapted to templ
// components via templ.FromGoHTML, rendered with Render.
package mailer
