package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Provider names accepted in Config.Provider.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderSES    = "ses"
)

// Config holds mail provider settings (mapped from SiteConfig.Mail).
type Config struct {
	Enable   bool
	Provider string
	From     string
	ReplyTo  string

	// SMTP
	Host string
	Port int
	User string
	Pass string

	// Resend
	ResendKey string

	// SES
	SESRegion      string
	SESAccessKeyID string
	SESSecretKey   string
}

// Attachment is an optional single file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single email to send. Text is derived from HTML when empty.
type Message struct {
	To         []string
	Subject    string
	HTML       string
	Text       string
	ReplyTo    string
	Attachment *Attachment
}

// Sender sends emails via SMTP, Resend, or SES. One attempt per call, no
// retries; failed sends surface a *SendError for the caller to log.
type Sender struct {
	cfg Config
}

func New(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send dispatches an email through the configured provider.
func (s *Sender) Send(msg Message) error {
	if !s.cfg.Enable {
		return newSendError("none", KindConfig, errors.New("mail is disabled"))
	}
	if len(msg.To) == 0 {
		return newSendError(s.providerName(), KindAddressRejected, errors.New("no recipients"))
	}
	if msg.Text == "" {
		msg.Text = StripHTML(msg.HTML)
	}
	if msg.ReplyTo == "" {
		msg.ReplyTo = s.cfg.ReplyTo
	}

	switch s.providerName() {
	case ProviderResend:
		return s.sendResend(msg)
	case ProviderSES:
		return s.sendSES(msg)
	default:
		return s.sendSMTP(msg)
	}
}

func (s *Sender) providerName() string {
	switch strings.ToLower(strings.TrimSpace(s.cfg.Provider)) {
	case ProviderResend:
		return ProviderResend
	case ProviderSES:
		return ProviderSES
	default:
		return ProviderSMTP
	}
}

func (s *Sender) fromAddress() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

// sendSMTP sends via net/smtp.
func (s *Sender) sendSMTP(msg Message) error {
	host := s.cfg.Host
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	from := s.fromAddress()
	raw, err := buildMIME(from, msg)
	if err != nil {
		return newSendError(ProviderSMTP, KindUnknown, err)
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, host)
	if err := smtp.SendMail(addr, auth, from, msg.To, raw); err != nil {
		return newSendError(ProviderSMTP, classifyMessage(err.Error()), err)
	}
	return nil
}

// sendResend sends via the Resend HTTP API.
func (s *Sender) sendResend(msg Message) error {
	payload := map[string]interface{}{
		"from":    s.fromAddress(),
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	}
	if msg.ReplyTo != "" {
		payload["reply_to"] = msg.ReplyTo
	}
	if msg.Attachment != nil {
		payload["attachments"] = []map[string]string{{
			"filename": msg.Attachment.Filename,
			"content":  base64.StdEncoding.EncodeToString(msg.Attachment.Data),
		}}
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewReader(body))
	if err != nil {
		return newSendError(ProviderResend, KindUnknown, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return newSendError(ProviderResend, KindTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		err := fmt.Errorf("resend error %d: %s", resp.StatusCode, errResp.Message)
		return newSendError(ProviderResend, classifyResendStatus(resp.StatusCode), err)
	}
	return nil
}

func classifyResendStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindThrottled
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return KindAddressRejected
	case status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

// sendSES sends via the AWS SESv2 API. With an attachment the message goes
// out as raw MIME; otherwise as simple content.
func (s *Sender) sendSES(msg Message) error {
	client := sesv2.New(sesv2.Options{
		Region: s.cfg.SESRegion,
		Credentials: credentials.NewStaticCredentialsProvider(
			s.cfg.SESAccessKeyID, s.cfg.SESSecretKey, ""),
	})

	from := s.fromAddress()
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: msg.To},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	if msg.Attachment != nil {
		raw, err := buildMIME(from, msg)
		if err != nil {
			return newSendError(ProviderSES, KindUnknown, err)
		}
		input.Content = &types.EmailContent{Raw: &types.RawMessage{Data: raw}}
	} else {
		input.Content = &types.EmailContent{Simple: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTML)},
				Text: &types.Content{Data: aws.String(msg.Text)},
			},
		}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := client.SendEmail(ctx, input); err != nil {
		return newSendError(ProviderSES, classifyMessage(err.Error()), err)
	}
	return nil
}

// buildMIME renders the message as a MIME document: multipart/alternative
// with text and HTML parts, wrapped in multipart/mixed when an attachment is
// present.
func buildMIME(from string, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	if msg.ReplyTo != "" {
		buf.WriteString(fmt.Sprintf("Reply-To: %s\r\n", msg.ReplyTo))
	}

	mixed := multipart.NewWriter(&buf)
	if msg.Attachment != nil {
		buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary()))

		var alt bytes.Buffer
		altWriter, err := writeAlternative(&alt, msg)
		if err != nil {
			return nil, err
		}
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", altWriter.Boundary())},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(alt.Bytes()); err != nil {
			return nil, err
		}

		contentType := msg.Attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		att, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {contentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", msg.Attachment.Filename)},
		})
		if err != nil {
			return nil, err
		}
		if _, err := att.Write([]byte(base64.StdEncoding.EncodeToString(msg.Attachment.Data))); err != nil {
			return nil, err
		}
		if err := mixed.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	alt := multipart.NewWriter(&buf)
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", alt.Boundary()))
	if _, err := writeAlternativeParts(alt, msg); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAlternative(w *bytes.Buffer, msg Message) (*multipart.Writer, error) {
	alt := multipart.NewWriter(w)
	if _, err := writeAlternativeParts(alt, msg); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	return alt, nil
}

func writeAlternativeParts(alt *multipart.Writer, msg Message) (int, error) {
	text, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return 0, err
	}
	if _, err := text.Write([]byte(msg.Text)); err != nil {
		return 0, err
	}

	htmlPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return 0, err
	}
	return htmlPart.Write([]byte(msg.HTML))
}

var (
	scriptStylePattern = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>`)
	lineBreakPattern   = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|tr|li)>`)
	anyTagPattern      = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern  = regexp.MustCompile(`[ \t]+`)
	blankLinePattern   = regexp.MustCompile(`\n{3,}`)
)

// StripHTML reduces an HTML body to plaintext for the text/plain part.
func StripHTML(s string) string {
	out := scriptStylePattern.ReplaceAllString(s, "")
	out = lineBreakPattern.ReplaceAllString(out, "\n")
	out = anyTagPattern.ReplaceAllString(out, "")
	out = html.UnescapeString(out)
	out = whitespacePattern.ReplaceAllString(out, " ")
	out = blankLinePattern.ReplaceAllString(out, "\n\n")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
