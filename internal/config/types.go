package config

// SiteConfig is the behavioural configuration persisted in the options table
// and editable at runtime through the admin API. It is stored as one JSON
// document and patched with a deep merge.
type SiteConfig struct {
	SEO        SEOConfig         `json:"seo"`
	URL        URLConfig         `json:"url"`
	Mail       MailOptions       `json:"mail_options"`
	Newsletter NewsletterOptions `json:"newsletter_options"`
	Review     ReviewOptions     `json:"review_options"`
	Features   FeatureList       `json:"feature_list"`
}

type SEOConfig struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

type URLConfig struct {
	WebURL   string `json:"web_url"`
	APIURL   string `json:"api_url"`
	AdminURL string `json:"admin_url"`
}

// MailOptions selects and configures the outbound mail provider.
type MailOptions struct {
	Enable   bool          `json:"enable"`
	Provider string        `json:"provider"` // "smtp" | "resend" | "ses"
	From     string        `json:"from"`
	ReplyTo  string        `json:"reply_to"`
	SMTP     SMTPOptions   `json:"smtp"`
	Resend   ResendOptions `json:"resend"`
	SES      SESOptions    `json:"ses"`
}

type SMTPOptions struct {
	User   string `json:"user"`
	Pass   string `json:"pass"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Secure bool   `json:"secure"`
}

type ResendOptions struct {
	APIKey string `json:"api_key"`
}

type SESOptions struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

type NewsletterOptions struct {
	VerifyPath      string `json:"verify_path"`      // appended to web_url in verification links
	UnsubscribePath string `json:"unsubscribe_path"` // appended to web_url in unsubscribe links
}

type ReviewOptions struct {
	// ExtraDenyWords extends the built-in denylist; matching is whole-word
	// and case-insensitive.
	ExtraDenyWords []string `json:"extra_deny_words"`
}

type FeatureList struct {
	Newsletter bool `json:"newsletter"`
	Reviews    bool `json:"reviews"`
}

// DefaultSiteConfig returns the baseline used for fresh installs and as the
// merge target when patches arrive with partial documents.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		SEO: SEOConfig{
			Title:       "folio-space",
			Description: "A personal portfolio",
		},
		URL: URLConfig{
			WebURL:   "http://localhost:3000",
			APIURL:   "http://localhost:2333",
			AdminURL: "http://localhost:3000/admin",
		},
		Mail: MailOptions{
			Provider: "smtp",
			SMTP: SMTPOptions{
				Port: 465,
			},
		},
		Newsletter: NewsletterOptions{
			VerifyPath:      "/newsletter/verify",
			UnsubscribePath: "/newsletter/unsubscribe",
		},
		Features: FeatureList{
			Newsletter: true,
			Reviews:    true,
		},
	}
}
