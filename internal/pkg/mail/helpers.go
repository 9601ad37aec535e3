package mail

import (
	"github.com/folio-space/core/internal/config"
)

// BuildMailConfig constructs a mail.Config from the persisted SiteConfig.
// This centralises the mapping so every caller (newsletter, broadcast, ...)
// builds the mailer configuration consistently.
func BuildMailConfig(cfg *config.SiteConfig) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		Enable:   cfg.Mail.Enable,
		Provider: cfg.Mail.Provider,
		From:     cfg.Mail.From,
		ReplyTo:  cfg.Mail.ReplyTo,

		Host: cfg.Mail.SMTP.Host,
		Port: cfg.Mail.SMTP.Port,
		User: cfg.Mail.SMTP.User,
		Pass: cfg.Mail.SMTP.Pass,

		ResendKey: cfg.Mail.Resend.APIKey,

		SESRegion:      cfg.Mail.SES.Region,
		SESAccessKeyID: cfg.Mail.SES.AccessKeyID,
		SESSecretKey:   cfg.Mail.SES.SecretAccessKey,
	}
}
