package email

import (
	"errors"
	"fmt"
)

var (
	ErrFailedToSendEmail = errors.New("failed to send email")
	ErrInvalidConfig     = errors.New("invalid email configuration")
	ErrInvalidParams     = errors.New("invalid email parameters")
)

// ProviderError carries the rejection reported by an email provider.
type ProviderError struct {
	Provider string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error: %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s error: %d - %s", e.Provider, e.Code, e.Message)
}
