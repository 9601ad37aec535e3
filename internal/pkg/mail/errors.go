package mail

import (
	"fmt"
	"strings"
)

// Kind classifies a send failure for logs. Handlers never show the kind to
// visitors; they collapse every failure into one generic message.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindAddressRejected
	KindThrottled
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAddressRejected:
		return "address_rejected"
	case KindThrottled:
		return "throttled"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// SendError wraps a provider failure with its classification.
type SendError struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mail send via %s failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

func newSendError(provider string, kind Kind, err error) *SendError {
	return &SendError{Kind: kind, Provider: provider, Err: err}
}

// classifyMessage maps a provider error string onto a Kind. SMTP gives us
// status codes in-band; Resend and SES surface names like "Throttling" or
// "MessageRejected" in the message body.
func classifyMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "throttl") || strings.Contains(lower, "rate") && strings.Contains(lower, "exceed"):
		return KindThrottled
	case strings.Contains(lower, "rejected") || strings.Contains(lower, "invalid recipient") ||
		strings.Contains(msg, "550") || strings.Contains(msg, "553"):
		return KindAddressRejected
	case strings.Contains(msg, "421") || strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "connection"):
		return KindTransient
	default:
		return KindUnknown
	}
}
