package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

const subscribeVerifyTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Confirm your subscription</h2>
  <p>Thanks for subscribing to {{.SiteName}}! Click the button below to verify your email address:</p>
  <p style="margin-top:24px">
    <a href="{{.VerifyURL}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Verify email</a>
  </p>
  <p style="color:#999;font-size:12px">If this wasn't you, just ignore this email.</p>
</div>
</body>
</html>`

const welcomeTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">You're in!</h2>
  <p>Your subscription to {{.SiteName}} is confirmed. Expect a note whenever something new goes up.</p>
  {{if .SiteURL}}
  <p style="margin-top:24px">
    <a href="{{.SiteURL}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Visit the site</a>
  </p>
  {{end}}
  <p style="color:#999;font-size:10px;text-align:center">&copy;{{year}} {{.SiteName}} &middot; automated email, replies are not monitored</p>
</div>
</body>
</html>`

const announcementTpl = `<!DOCTYPE html>
<html>
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
</head>
<body style="background-color:#fff;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,BlinkMacSystemFont,Segoe UI,Roboto,Helvetica Neue,Arial,Noto Sans,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:100%;border-radius:.375rem;box-shadow:0 4px 6px -1px rgb(0 0 0 / .1),0 2px 4px -2px rgb(0 0 0 / .1);margin:40px auto;padding:20px;width:550px;position:relative;overflow:hidden;border:1px solid rgb(79,70,229)">
    <tbody>
      <tr><td>
        <p style="font-size:14px;line-height:24px;margin:16px 0">{{.SiteName}} just published:</p>
        <h1 style="font-size:20px;text-align:center">{{.Title}}</h1>
        <div style="font-size:14px;line-height:24px;margin:16px 0">{{.ExcerptHTML}}</div>
        <table align="center" width="100%" role="presentation" border="0" cellpadding="0" cellspacing="0" style="text-align:center;margin-top:32px;margin-bottom:32px;position:relative">
          <tbody><tr><td>
            <a href="{{.DetailURL}}" target="_blank" style="line-height:100%;text-decoration:none;display:inline-block;max-width:100%;padding:12px 20px;background-color:rgb(79,70,229);border-radius:.25rem;color:#fff;font-size:12px;font-weight:600;text-align:center">Read the full post</a>
            {{if .UnsubscribeURL}}
            <a href="{{.UnsubscribeURL}}" target="_blank" style="color:rgb(156,163,175);text-decoration:none;position:absolute;right:0;font-size:12px;top:.75rem">Unsubscribe</a>
            {{end}}
          </td></tr></tbody>
        </table>
        <hr style="width:100%;border:none;border-top:1px solid #eaeaea" />
        <p style="font-size:10px;line-height:24px;margin:16px 0;text-align:center;color:rgb(156,163,175)">Automated email, replies are not monitored.<br />&copy;{{year}} {{.SiteName}}</p>
      </td></tr>
    </tbody>
  </table>
</body>
</html>`

// SubscribeVerifyData is the data for subscription verification emails.
type SubscribeVerifyData struct {
	SiteName  string
	VerifyURL string
}

// WelcomeData is the data for post-verification welcome emails.
type WelcomeData struct {
	SiteName string
	SiteURL  string
}

// AnnouncementData is the data for announcement broadcast emails.
type AnnouncementData struct {
	SiteName       string
	Title          string
	ExcerptHTML    template.HTML
	DetailURL      string
	UnsubscribeURL string
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	}).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendSubscribeVerify sends a verification email to a new subscriber.
func (s *Sender) SendSubscribeVerify(to string, data SubscribeVerifyData) error {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "folio-space"
	}
	html, err := renderTemplate(subscribeVerifyTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[%s] Please verify your subscription", data.SiteName),
		HTML:    html,
	})
}

// SendWelcome greets a subscriber right after verification.
func (s *Sender) SendWelcome(to string, data WelcomeData) error {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "folio-space"
	}
	html, err := renderTemplate(welcomeTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[%s] Welcome aboard", data.SiteName),
		HTML:    html,
	})
}

// SendAnnouncement sends one announcement broadcast email.
func (s *Sender) SendAnnouncement(to string, data AnnouncementData) error {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "folio-space"
	}
	html, err := renderTemplate(announcementTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[%s] %s", data.SiteName, data.Title),
		HTML:    html,
	})
}
