package main

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/mailmerge/pkg/email"
)

func newEmailSender(provider, devDir string, cfg email.Config, hc *http.Client) (email.EmailSender, error) {
	switch provider {
	case providerPostmark:
		return email.NewPostmarkClient(cfg)
	case providerBrevo:
		return email.NewBrevoClient(cfg, email.WithBrevoHTTPClient(hc))
	case providerDev:
		return email.NewDevSender(devDir), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", provider)
}
