package configs

import (
	"encoding/json"

	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/configs")

	g.GET("", h.getPublic)

	a := g.Group("", authMW)
	a.GET("/all", h.getAll)
	a.PATCH("", h.patch)
	a.PATCH("/:key", h.patchSection)
}

// getPublic returns the public-safe subset of the config.
func (h *Handler) getPublic(c *gin.Context) {
	cfg, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"seo":          cfg.SEO,
		"url":          cfg.URL,
		"feature_list": cfg.Features,
	})
}

// getAll returns the full config (admin only). Sensitive fields like provider
// credentials are included.
func (h *Handler) getAll(c *gin.Context) {
	cfg, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cfg)
}

// patch merges a partial config update.
func (h *Handler) patch(c *gin.Context) {
	var partial map[string]json.RawMessage
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	normalized := make(map[string]json.RawMessage, len(partial))
	for k, v := range partial {
		normalized[camelToSnakeKey(k)] = v
	}
	updated, err := h.svc.Patch(normalized)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, updated)
}

// patchSection merges an update into one top-level config section, e.g.
// PATCH /configs/mail_options.
func (h *Handler) patchSection(c *gin.Context) {
	key := camelToSnakeKey(c.Param("key"))
	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.svc.Patch(map[string]json.RawMessage{key: body})
	if err != nil {
		response.InternalError(c, err)
		return
	}

	full, _ := json.Marshal(updated)
	var m map[string]json.RawMessage
	_ = json.Unmarshal(full, &m)
	if val, ok := m[key]; ok {
		var section interface{}
		_ = json.Unmarshal(val, &section)
		response.OK(c, section)
		return
	}
	response.OK(c, updated)
}
