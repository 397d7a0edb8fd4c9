package notify

import "github.com/hezo-be/webinar-backend/config"

// NewSenderFromConfig picks Resend when an API key is set, else SMTP when a host is set.
// It returns nil when neither is configured, which disables sending.
func NewSenderFromConfig(cfg config.EmailConfig) Sender {
	if cfg.APIKey != "" {
		return NewResendSender(cfg.APIKey, cfg.From())
	}
	smtpCfg := SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.FromAddress,
		FromName: cfg.FromName,
	}
	if smtpCfg.Configured() {
		return NewSMTPSender(smtpCfg)
	}
	return nil
}
