package visitors

import (
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	g := rg.Group("/visitors")
	g.GET("", h.count)
	g.POST("/hit", h.hit)
}

func (h *Handler) hit(c *gin.Context) {
	total, err := h.svc.Hit(c.Request.Context(), c.ClientIP())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"count": total})
}

func (h *Handler) count(c *gin.Context) {
	total, err := h.svc.Count()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"count": total})
}
