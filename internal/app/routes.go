package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/modules/auth"
	"github.com/folio-space/core/internal/modules/broadcast"
	"github.com/folio-space/core/internal/modules/configs"
	"github.com/folio-space/core/internal/modules/newsletter"
	"github.com/folio-space/core/internal/modules/review"
	"github.com/folio-space/core/internal/modules/visitors"
	pkgredis "github.com/folio-space/core/internal/pkg/redis"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "folio-space",
		"version":  "1.0.0",
		"homepage": "https://github.com/folio-space/core",
		"issues":   "https://github.com/folio-space/core/issues",
	}

	apiPrefix := "/api/v1"

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	// Shared services
	cfgSvc := configs.NewService(db)
	taskSvc := taskqueue.NewService(rc)

	// Versioned API
	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:             15 * time.Second,
		EnableCDNHeader: true,
		Disable:         a.cfg.IsDev(),
		SkipPaths:       httpCacheSkipPaths(apiPrefix),
	}))

	// App info endpoints
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	api.GET("/clean_cache", authMW, func(c *gin.Context) {
		cfgSvc.Invalidate()
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
	})

	// Site options
	configs.NewHandler(cfgSvc).RegisterRoutes(api, authMW)

	// Auth
	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)

	// Newsletter
	newsSvc := newsletter.NewService(newsletter.NewStore(db), cfgSvc, a.logger)
	newsletter.NewHandler(newsSvc).RegisterRoutes(api, authMW)

	// Reviews
	review.NewHandler(review.NewService(review.NewStore(db), cfgSvc)).RegisterRoutes(api, authMW)

	// Announcements (broadcast to subscribers)
	bcastSvc := broadcast.NewService(db, newsSvc, cfgSvc, taskSvc, a.logger)
	broadcast.NewHandler(bcastSvc).RegisterRoutes(api, authMW)

	// Visitor counter
	visitorSvc := visitors.NewService(visitors.NewStore(db), visitors.NewMarker(rc))
	visitors.NewHandler(visitorSvc).RegisterRoutes(api, authMW)
}

func httpCacheSkipPaths(apiPrefix string) []string {
	p := strings.TrimSuffix(strings.TrimSpace(apiPrefix), "/")
	if p == "" {
		p = "/api/v1"
	}
	return []string{
		p + "/uptime",
		p + "/clean_cache",
		p + "/visitors",
		p + "/visitors/hit",
		p + "/newsletter/verify",
		p + "/newsletter/unsubscribe",
		p + "/reviews/stats",
	}
}
