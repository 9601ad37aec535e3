package newsletter

import (
	"errors"
	"testing"
	"time"

	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/models"
	pkgmail "github.com/folio-space/core/internal/pkg/mail"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriberStore struct {
	byEmail map[string]*models.SubscriberModel

	// when set, CreateIfAbsent reports a lost race regardless of state
	loseCreateRace bool
}

func newFakeSubscriberStore() *fakeSubscriberStore {
	return &fakeSubscriberStore{byEmail: map[string]*models.SubscriberModel{}}
}

func (f *fakeSubscriberStore) GetByEmail(email string) (*models.SubscriberModel, error) {
	if sub, ok := f.byEmail[email]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSubscriberStore) GetByToken(token string) (*models.SubscriberModel, error) {
	for _, sub := range f.byEmail {
		if sub.Token != "" && sub.Token == token {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriberStore) CreateIfAbsent(sub *models.SubscriberModel) (bool, error) {
	if f.loseCreateRace {
		return false, nil
	}
	if _, ok := f.byEmail[sub.Email]; ok {
		return false, nil
	}
	sub.ID = "sub-" + sub.Email
	cp := *sub
	f.byEmail[sub.Email] = &cp
	return true, nil
}

func (f *fakeSubscriberStore) Save(sub *models.SubscriberModel) error {
	cp := *sub
	f.byEmail[sub.Email] = &cp
	return nil
}

func (f *fakeSubscriberStore) MarkVerified(id, unsubscribeToken string, at time.Time) error {
	for _, sub := range f.byEmail {
		if sub.ID == id {
			sub.Verified = true
			sub.VerifiedAt = &at
			sub.Token = ""
			sub.UnsubscribeToken = &unsubscribeToken
			return nil
		}
	}
	return errors.New("no such subscriber")
}

func (f *fakeSubscriberStore) DeleteByEmail(email string) (int64, error) {
	if _, ok := f.byEmail[email]; ok {
		delete(f.byEmail, email)
		return 1, nil
	}
	return 0, nil
}

func (f *fakeSubscriberStore) DeleteByUnsubscribeToken(token string) (int64, error) {
	for email, sub := range f.byEmail {
		if sub.UnsubscribeToken != nil && *sub.UnsubscribeToken == token {
			delete(f.byEmail, email)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeSubscriberStore) DeleteBatch(emails []string, all bool) (int64, error) {
	if all {
		n := int64(len(f.byEmail))
		f.byEmail = map[string]*models.SubscriberModel{}
		return n, nil
	}
	var n int64
	for _, email := range emails {
		if _, ok := f.byEmail[email]; ok {
			delete(f.byEmail, email)
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriberStore) ListActive() ([]models.SubscriberModel, error) {
	var out []models.SubscriberModel
	for _, sub := range f.byEmail {
		if sub.Verified {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubscriberStore) List(q pagination.Query) ([]models.SubscriberModel, response.Pagination, error) {
	var out []models.SubscriberModel
	for _, sub := range f.byEmail {
		out = append(out, *sub)
	}
	return out, response.Pagination{Total: int64(len(out))}, nil
}

type countingMailer struct {
	verifySent  int
	welcomeSent int
	lastVerify  pkgmail.SubscribeVerifyData
	sendErr     error
}

func (m *countingMailer) SendSubscribeVerify(to string, data pkgmail.SubscribeVerifyData) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.verifySent++
	m.lastVerify = data
	return nil
}

func (m *countingMailer) SendWelcome(to string, data pkgmail.WelcomeData) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.welcomeSent++
	return nil
}

type staticConfigSource struct{ cfg *config.SiteConfig }

func (s staticConfigSource) Get() (*config.SiteConfig, error) { return s.cfg, nil }

func testSiteConfig() *config.SiteConfig {
	cfg := config.DefaultSiteConfig()
	cfg.SEO.Title = "Folio"
	cfg.URL.WebURL = "https://folio.example.com"
	cfg.Mail.Enable = true
	return cfg
}

func newTestService(store SubscriberStore, mailer *countingMailer) *Service {
	svc := NewService(store, staticConfigSource{cfg: testSiteConfig()}, nil)
	svc.newMailer = func(cfg pkgmail.Config) Mailer { return mailer }
	return svc
}

func TestSubscribeNewEmail(t *testing.T) {
	store := newFakeSubscriberStore()
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	sub, err := svc.Subscribe("  Reader@Example.COM ")
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", sub.Email)
	assert.Len(t, sub.Token, 32)
	assert.False(t, sub.Verified)
	assert.Equal(t, 1, mailer.verifySent)
	assert.Contains(t, mailer.lastVerify.VerifyURL, "token="+sub.Token)
}

func TestSubscribePendingRegeneratesToken(t *testing.T) {
	store := newFakeSubscriberStore()
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	first, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)
	second, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 2, mailer.verifySent, "each subscribe call sends exactly one verification email")

	// the old token no longer verifies
	_, err = svc.Verify(first.Token)
	assert.ErrorIs(t, err, errTokenInvalid)
}

func TestSubscribeActiveRejected(t *testing.T) {
	store := newFakeSubscriberStore()
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)
	_, err = svc.Verify(sub.Token)
	require.NoError(t, err)

	_, err = svc.Subscribe("reader@example.com")
	assert.ErrorIs(t, err, errAlreadySubscribed)
	assert.Equal(t, 1, mailer.verifySent)
}

func TestSubscribeLosesCreateRace(t *testing.T) {
	store := newFakeSubscriberStore()
	store.loseCreateRace = true
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	_, err := svc.Subscribe("reader@example.com")
	assert.ErrorIs(t, err, errSubscribeConflict)
	assert.Zero(t, mailer.verifySent, "the losing request must not send")
}

func TestResubscribeAfterUnsubscribe(t *testing.T) {
	store := newFakeSubscriberStore()
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	first, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)
	_, err = svc.Verify(first.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe("reader@example.com"))

	// unsubscribing frees the email; the address starts over from scratch
	again, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)
	assert.False(t, again.Verified)
	assert.NotEqual(t, first.Token, again.Token)
	assert.Equal(t, 2, mailer.verifySent)
}

func TestVerifyActivatesAndWelcomes(t *testing.T) {
	store := newFakeSubscriberStore()
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	verified, err := svc.Verify(sub.Token)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	require.NotNil(t, verified.VerifiedAt)
	assert.Empty(t, verified.Token, "the verification token is spent on use")
	require.NotNil(t, verified.UnsubscribeToken)
	assert.Len(t, *verified.UnsubscribeToken, 32)
	assert.NotEqual(t, sub.Token, *verified.UnsubscribeToken)
	assert.Equal(t, 1, mailer.welcomeSent)
}

func TestVerifyTokenSingleUse(t *testing.T) {
	store := newFakeSubscriberStore()
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)
	_, err = svc.Verify(sub.Token)
	require.NoError(t, err)

	_, err = svc.Verify(sub.Token)
	assert.ErrorIs(t, err, errTokenInvalid, "a used verification link is dead")
	assert.Equal(t, 1, mailer.welcomeSent)
}

func TestVerifyInvalidToken(t *testing.T) {
	svc := newTestService(newFakeSubscriberStore(), &countingMailer{})

	_, err := svc.Verify("deadbeef")
	assert.ErrorIs(t, err, errTokenInvalid)
	_, err = svc.Verify("   ")
	assert.ErrorIs(t, err, errTokenInvalid)
}

func TestVerifySurvivesWelcomeFailure(t *testing.T) {
	store := newFakeSubscriberStore()
	mailer := &countingMailer{}
	svc := newTestService(store, mailer)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	mailer.sendErr = errors.New("smtp down")
	verified, err := svc.Verify(sub.Token)
	require.NoError(t, err, "a lost welcome email must not fail the verification")
	assert.True(t, verified.Verified)
}

func TestUnsubscribeIdempotent(t *testing.T) {
	store := newFakeSubscriberStore()
	svc := newTestService(store, &countingMailer{})

	_, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe("Reader@Example.com"))
	require.NoError(t, svc.Unsubscribe("reader@example.com"), "second unsubscribe is still a success")
	require.NoError(t, svc.Unsubscribe("never-subscribed@example.com"))
}

func TestUnsubscribeByToken(t *testing.T) {
	store := newFakeSubscriberStore()
	svc := newTestService(store, &countingMailer{})

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)
	verified, err := svc.Verify(sub.Token)
	require.NoError(t, err)
	require.NotNil(t, verified.UnsubscribeToken)

	// the spent verification token does not unsubscribe anyone
	require.NoError(t, svc.UnsubscribeByToken(sub.Token))
	got, err := store.GetByEmail("reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, svc.UnsubscribeByToken(*verified.UnsubscribeToken))
	got, err = store.GetByEmail("reader@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, svc.UnsubscribeByToken(*verified.UnsubscribeToken))

	err = svc.UnsubscribeByToken("  ")
	assert.ErrorIs(t, err, errTokenInvalid)
}

func TestBatchUnsubscribeNormalizes(t *testing.T) {
	store := newFakeSubscriberStore()
	svc := newTestService(store, &countingMailer{})

	_, err := svc.Subscribe("a@example.com")
	require.NoError(t, err)
	_, err = svc.Subscribe("b@example.com")
	require.NoError(t, err)

	n, err := svc.BatchUnsubscribe([]string{" A@Example.com ", ""}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnabledFollowsFeatureAndMailFlags(t *testing.T) {
	cfg := testSiteConfig()
	svc := NewService(newFakeSubscriberStore(), staticConfigSource{cfg: cfg}, nil)

	on, err := svc.Enabled()
	require.NoError(t, err)
	assert.True(t, on)

	cfg.Mail.Enable = false
	on, err = svc.Enabled()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestBuildTokenURL(t *testing.T) {
	u, err := buildTokenURL("https://folio.example.com/", "/newsletter/verify", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://folio.example.com/newsletter/verify?token=abc123", u)

	_, err = buildTokenURL("", "/newsletter/verify", "abc123")
	assert.Error(t, err)
	_, err = buildTokenURL("not a url", "/newsletter/verify", "abc123")
	assert.Error(t, err)
}
