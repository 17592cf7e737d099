package email

// Config holds email provider configuration.
// Provider tokens are optional so development can run with the DevSender.
// SenderEmail is the verified From address for every outbound message.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	BrevoAPIKey          string `env:"BREVO_API_KEY"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SenderName           string `env:"SENDER_NAME" envDefault:"Mailmerge Demo"`
	SupportEmail         string `env:"SUPPORT_EMAIL"` // optional Reply-To
}
