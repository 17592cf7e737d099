// Package email sends transactional emails through a provider-agnostic EmailSender.
//
// Three senders are available:
//   - NewPostmarkClient sends through Postmark.
//   - NewBrevoClient sends through Brevo's v3 SMTP API.
//   - NewDevSender writes each message to a local directory as HTML plus JSON metadata.
//
// Every sender validates SendEmailParams before doing any I/O. Failures wrap
// ErrInvalidParams or ErrFailedToSendEmail; rejections reported by a provider
// also carry a *ProviderError with the provider's message:
//
//	err := sender.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "user@example.com",
//	    Subject:  "Welcome!",
//	    BodyHTML: html,
//	    Tag:      "welcome",
//	})
//	var perr *email.ProviderError
//	if errors.As(err, &perr) {
//	    log.Println(perr.Message)
//	}
//
// HTML bodies are built with the templates subpackage, which renders templ
// components to strings.
package email
