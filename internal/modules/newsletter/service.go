package newsletter

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/models"
	pkgmail "github.com/folio-space/core/internal/pkg/mail"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"go.uber.org/zap"
)

// ConfigSource yields the current site options.
type ConfigSource interface {
	Get() (*config.SiteConfig, error)
}

// Mailer is the slice of the mail sender the workflow uses.
type Mailer interface {
	SendSubscribeVerify(to string, data pkgmail.SubscribeVerifyData) error
	SendWelcome(to string, data pkgmail.WelcomeData) error
}

type Service struct {
	store  SubscriberStore
	cfgSvc ConfigSource
	logger *zap.Logger

	// newMailer builds a sender from the current mail options; swapped out in
	// tests for a counting fake.
	newMailer func(cfg pkgmail.Config) Mailer
}

func NewService(store SubscriberStore, cfgSvc ConfigSource, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cfgSvc: cfgSvc,
		logger: logger,
		newMailer: func(cfg pkgmail.Config) Mailer {
			return pkgmail.New(cfg)
		},
	}
}

// NormalizeEmail canonicalizes an address: trim whitespace, lowercase.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newToken() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Subscribe starts or restarts the verification flow for an email. Every
// successful call sends exactly one verification email:
//   - active subscriber: rejected, nothing sent
//   - pending subscriber: token regenerated, verification re-sent
//   - new email: row created, verification sent
//
// Losing a concurrent create race returns errSubscribeConflict instead of
// silently sending a second email.
func (s *Service) Subscribe(email string) (*models.SubscriberModel, error) {
	email = NormalizeEmail(email)

	existing, err := s.store.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Verified {
		return nil, errAlreadySubscribed
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Token = token
		if err := s.store.Save(existing); err != nil {
			return nil, err
		}
		if err := s.sendVerifyEmail(existing.Email, existing.Token); err != nil {
			return nil, err
		}
		return existing, nil
	}

	sub := &models.SubscriberModel{Email: email, Token: token}
	created, err := s.store.CreateIfAbsent(sub)
	if err != nil {
		return nil, err
	}
	if !created {
		// Another request inserted this email between our lookup and the
		// insert. The winner already sent a verification email.
		return nil, errSubscribeConflict
	}
	if err := s.sendVerifyEmail(sub.Email, sub.Token); err != nil {
		return nil, err
	}
	return sub, nil
}

// Verify flips a pending subscriber to active and sends the welcome email.
// The verification token is one-shot: the transition clears it, so the same
// link fails with errTokenInvalid afterwards. A fresh unsubscribe token is
// minted in its place for the links in broadcast emails. The row is updated
// before the welcome send, so a crash in between loses the welcome mail but
// never re-runs the transition.
func (s *Service) Verify(token string) (*models.SubscriberModel, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errTokenInvalid
	}

	sub, err := s.store.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errTokenInvalid
	}
	if sub.Verified {
		// Only reachable if a crashed verify left the flag set with the
		// token still in place; treat the retry as a success, no email.
		return sub, nil
	}

	unsubToken, err := newToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.store.MarkVerified(sub.ID, unsubToken, now); err != nil {
		return nil, err
	}
	sub.Verified = true
	sub.VerifiedAt = &now
	sub.Token = ""
	sub.UnsubscribeToken = &unsubToken

	if err := s.sendWelcomeEmail(sub.Email); err != nil {
		// The subscription itself is confirmed; only the greeting was lost.
		s.logMailError("welcome", sub.Email, err)
	}
	return sub, nil
}

// Unsubscribe removes a subscriber by email. Removing an address that was
// never subscribed is a success.
func (s *Service) Unsubscribe(email string) error {
	_, err := s.store.DeleteByEmail(NormalizeEmail(email))
	return err
}

// UnsubscribeByToken serves the one-click link in broadcast emails, keyed by
// the unsubscribe token minted at verification. Also idempotent.
func (s *Service) UnsubscribeByToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errTokenInvalid
	}
	_, err := s.store.DeleteByUnsubscribeToken(token)
	return err
}

func (s *Service) BatchUnsubscribe(emails []string, all bool) (int64, error) {
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if n := NormalizeEmail(e); n != "" {
			normalized = append(normalized, n)
		}
	}
	return s.store.DeleteBatch(normalized, all)
}

// ListActive returns every verified subscriber, the broadcast fan-out list.
func (s *Service) ListActive() ([]models.SubscriberModel, error) {
	return s.store.ListActive()
}

// List returns all subscribers, paginated, for the admin surface.
func (s *Service) List(q pagination.Query) ([]models.SubscriberModel, response.Pagination, error) {
	return s.store.List(q)
}

// Enabled reports whether the subscription workflow accepts new signups.
func (s *Service) Enabled() (bool, error) {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return false, err
	}
	return cfg.Features.Newsletter && cfg.Mail.Enable, nil
}

func (s *Service) sendVerifyEmail(to, token string) error {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return err
	}

	verifyURL, err := buildTokenURL(cfg.URL.WebURL, cfg.Newsletter.VerifyPath, token)
	if err != nil {
		return err
	}

	mailer := s.newMailer(pkgmail.BuildMailConfig(cfg))
	if err := mailer.SendSubscribeVerify(to, pkgmail.SubscribeVerifyData{
		SiteName:  cfg.SEO.Title,
		VerifyURL: verifyURL,
	}); err != nil {
		s.logMailError("verify", to, err)
		return err
	}
	return nil
}

func (s *Service) sendWelcomeEmail(to string) error {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return err
	}
	mailer := s.newMailer(pkgmail.BuildMailConfig(cfg))
	return mailer.SendWelcome(to, pkgmail.WelcomeData{
		SiteName: cfg.SEO.Title,
		SiteURL:  cfg.URL.WebURL,
	})
}

func (s *Service) logMailError(kind, to string, err error) {
	if s.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("template", kind),
		zap.String("to", to),
		zap.Error(err),
	}
	var sendErr *pkgmail.SendError
	if errors.As(err, &sendErr) {
		fields = append(fields,
			zap.String("provider", sendErr.Provider),
			zap.String("kind", sendErr.Kind.String()))
	}
	s.logger.Warn("newsletter email failed", fields...)
}

// buildTokenURL joins the site base URL with a path and a token query param.
func buildTokenURL(baseURL, path, token string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", fmt.Errorf("site web_url is not configured")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid site web_url")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
