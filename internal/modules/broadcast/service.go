package broadcast

import (
	"bytes"
	"context"
	"errors"
	htmltemplate "html/template"
	"strings"
	"time"

	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/models"
	pkgmail "github.com/folio-space/core/internal/pkg/mail"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/taskqueue"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const taskTypeBroadcast = "broadcast.announcement"

var excerptEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

// ConfigSource yields the current site options.
type ConfigSource interface {
	Get() (*config.SiteConfig, error)
}

// SubscriberSource lists the active newsletter subscribers to fan out to.
type SubscriberSource interface {
	ListActive() ([]models.SubscriberModel, error)
}

// Mailer is the slice of the mail sender the broadcast uses.
type Mailer interface {
	SendAnnouncement(to string, data pkgmail.AnnouncementData) error
}

type Service struct {
	db     *gorm.DB
	subs   SubscriberSource
	cfgSvc ConfigSource
	tasks  *taskqueue.Service
	logger *zap.Logger

	newMailer func(cfg pkgmail.Config) Mailer
}

func NewService(db *gorm.DB, subs SubscriberSource, cfgSvc ConfigSource, tasks *taskqueue.Service, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		subs:   subs,
		cfgSvc: cfgSvc,
		tasks:  tasks,
		logger: logger,
		newMailer: func(cfg pkgmail.Config) Mailer {
			return pkgmail.New(cfg)
		},
	}
}

// Announce enqueues the fan-out as a background task and returns it. The
// task moves pending -> running -> completed/failed as the broadcast runs.
func (s *Service) Announce(ctx context.Context, dto *AnnounceDTO) (*taskqueue.Task, error) {
	if strings.TrimSpace(dto.Title) == "" {
		return nil, errEmptyTitle
	}
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, err
	}
	if !cfg.Mail.Enable {
		return nil, errMailDisabled
	}

	task, err := s.tasks.Enqueue(ctx, taskTypeBroadcast, dto, "")
	if err != nil {
		return nil, err
	}

	go s.runBroadcast(context.Background(), task.ID, dto)
	return task, nil
}

// runBroadcast performs the fan-out: render the excerpt, send one email per
// active subscriber (each with its own unsubscribe link), then write the
// write-once audit record.
func (s *Service) runBroadcast(ctx context.Context, taskID string, dto *AnnounceDTO) {
	if s.tasks != nil {
		_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")
	}

	note, sent, recipients, err := s.broadcast(dto)
	if err != nil {
		s.logger.Error("announcement broadcast failed",
			zap.String("task_id", taskID),
			zap.String("title", dto.Title),
			zap.Error(err))
		if s.tasks != nil {
			_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		}
		return
	}

	s.logger.Info("announcement broadcast finished",
		zap.String("title", dto.Title),
		zap.Int("recipients", recipients),
		zap.Int("sent", sent))
	if s.tasks != nil {
		_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, broadcastResult{
			NotificationID: note.ID,
			Recipients:     recipients,
			Sent:           sent,
		}, "")
	}
}

// broadcast is the synchronous core of the fan-out. Per-recipient failures
// are logged and skipped; the audit record counts only successful sends.
func (s *Service) broadcast(dto *AnnounceDTO) (*models.NotificationModel, int, int, error) {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, 0, 0, err
	}

	subscribers, err := s.subs.ListActive()
	if err != nil {
		return nil, 0, 0, err
	}

	excerptHTML := renderExcerpt(dto.Excerpt)
	mailer := s.newMailer(pkgmail.BuildMailConfig(cfg))

	sent := 0
	for _, sub := range subscribers {
		token := ""
		if sub.UnsubscribeToken != nil {
			token = *sub.UnsubscribeToken
		}
		unsubscribeURL := buildUnsubscribeURL(cfg, token)
		err := mailer.SendAnnouncement(sub.Email, pkgmail.AnnouncementData{
			SiteName:       cfg.SEO.Title,
			Title:          dto.Title,
			ExcerptHTML:    excerptHTML,
			DetailURL:      dto.URL,
			UnsubscribeURL: unsubscribeURL,
		})
		if err != nil {
			s.logSendError(sub.Email, err)
			continue
		}
		sent++
	}

	note := &models.NotificationModel{
		Platform:    dto.Platform,
		Title:       dto.Title,
		URL:         dto.URL,
		Excerpt:     dto.Excerpt,
		PublishedAt: dto.PublishedAt,
		SentAt:      time.Now(),
		SentCount:   sent,
	}
	if err := s.db.Create(note).Error; err != nil {
		return nil, sent, len(subscribers), err
	}
	return note, sent, len(subscribers), nil
}

// List returns the audit log, newest first.
func (s *Service) List(q pagination.Query) ([]models.NotificationModel, response.Pagination, error) {
	var notes []models.NotificationModel
	page, err := pagination.Paginate(
		s.db.Model(&models.NotificationModel{}).Order("sent_at DESC"), q, &notes)
	return notes, page, err
}

func (s *Service) logSendError(to string, err error) {
	if s.logger == nil {
		return
	}
	fields := []zap.Field{zap.String("to", to), zap.Error(err)}
	var sendErr *pkgmail.SendError
	if errors.As(err, &sendErr) {
		fields = append(fields,
			zap.String("provider", sendErr.Provider),
			zap.String("kind", sendErr.Kind.String()))
	}
	s.logger.Warn("announcement email failed", fields...)
}

func renderExcerpt(markdown string) htmltemplate.HTML {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := excerptEngine.Convert([]byte(markdown), &buf); err != nil {
		return htmltemplate.HTML(htmltemplate.HTMLEscapeString(markdown))
	}
	return htmltemplate.HTML(buf.String())
}

func buildUnsubscribeURL(cfg *config.SiteConfig, token string) string {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL.WebURL), "/")
	if base == "" || token == "" {
		return ""
	}
	path := "/" + strings.TrimLeft(cfg.Newsletter.UnsubscribePath, "/")
	return base + path + "?token=" + token
}
