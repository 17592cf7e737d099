package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBrevoEndpoint is Brevo's transactional email API.
const DefaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type brevoClient struct {
	httpClient *http.Client
	endpoint   string
	config     Config
}

// BrevoOption configures the Brevo sender.
type BrevoOption func(*brevoClient)

// WithBrevoEndpoint overrides DefaultBrevoEndpoint.
func WithBrevoEndpoint(url string) BrevoOption {
	return func(c *brevoClient) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithBrevoHTTPClient replaces the default HTTP client.
func WithBrevoHTTPClient(hc *http.Client) BrevoOption {
	return func(c *brevoClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	ReplyTo     *brevoContact  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	Tags        []string       `json:"tags,omitempty"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBrevoClient creates a Brevo-backed email sender.
func NewBrevoClient(cfg Config, opts ...BrevoOption) (EmailSender, error) {
	if cfg.BrevoAPIKey == "" {
		return nil, fmt.Errorf("%w: BrevoAPIKey is required", ErrInvalidConfig)
	}
	if err := validateSender(cfg); err != nil {
		return nil, err
	}

	c := &brevoClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   DefaultBrevoEndpoint,
		config:     cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SendEmail posts the message to Brevo. A non-2xx response becomes a
// ProviderError holding Brevo's message.
func (c *brevoClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	payload := brevoRequest{
		Sender:      brevoContact{Name: c.config.SenderName, Email: c.config.SenderEmail},
		To:          []brevoContact{{Email: params.SendTo}},
		Subject:     params.Subject,
		HTMLContent: params.BodyHTML,
	}
	if c.config.SupportEmail != "" {
		payload.ReplyTo = &brevoContact{Email: c.config.SupportEmail}
	}
	if params.Tag != "" {
		payload.Tags = []string{params.Tag}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.config.BrevoAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	perr := &ProviderError{Provider: "brevo", Code: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var be brevoError
	if json.Unmarshal(raw, &be) == nil && be.Message != "" {
		perr.Message = be.Message
	} else {
		perr.Message = http.StatusText(resp.StatusCode)
	}
	return errors.Join(ErrFailedToSendEmail, perr)
}
