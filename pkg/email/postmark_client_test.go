package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/email"
)

func postmarkConfig() email.Config {
	return email.Config{
		PostmarkServerToken:  "test-server-token",
		PostmarkAccountToken: "test-account-token",
		SenderEmail:          "sender@example.com",
		SenderName:           "Mailmerge Demo",
	}
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	client, err := email.NewPostmarkClient(postmarkConfig())
	require.NoError(t, err)
	assert.NotNil(t, client)

	tests := []struct {
		name   string
		mutate func(*email.Config)
		errMsg string
	}{
		{name: "server token", mutate: func(c *email.Config) { c.PostmarkServerToken = "" }, errMsg: "PostmarkServerToken is required"},
		{name: "account token", mutate: func(c *email.Config) { c.PostmarkAccountToken = "" }, errMsg: "PostmarkAccountToken is required"},
		{name: "sender", mutate: func(c *email.Config) { c.SenderEmail = "" }, errMsg: "SenderEmail is required"},
		{name: "sender format", mutate: func(c *email.Config) { c.SenderEmail = "nope" }, errMsg: "SenderEmail must be a valid email address"},
		{name: "support format", mutate: func(c *email.Config) { c.SupportEmail = "nope" }, errMsg: "SupportEmail must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := postmarkConfig()
			tt.mutate(&cfg)

			client, err := email.NewPostmarkClient(cfg)
			require.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, client)
		})
	}
}

func TestPostmarkClient_SendEmail_ValidationError(t *testing.T) {
	t.Parallel()

	client, err := email.NewPostmarkClient(postmarkConfig())
	require.NoError(t, err)

	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "not-an-email",
		Subject:  "x",
		BodyHTML: "<p>x</p>",
	})
	require.ErrorIs(t, err, email.ErrInvalidParams)
}
