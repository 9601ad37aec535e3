package broadcast

import (
	"errors"

	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/announcements", authMW)
	g.POST("", h.announce)
	g.GET("", h.list)
	g.GET("/tasks/:id", h.taskStatus)
}

func (h *Handler) announce(c *gin.Context) {
	var dto AnnounceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.svc.Announce(c.Request.Context(), &dto)
	switch {
	case errors.Is(err, errMailDisabled):
		response.BadRequest(c, "Mail is disabled; enable it before broadcasting.")
		return
	case errors.Is(err, errEmptyTitle):
		response.BadRequest(c, "Announcement title is required.")
		return
	case err != nil:
		response.InternalError(c, err)
		return
	}

	response.Created(c, gin.H{"task_id": task.ID, "status": task.Status})
}

func (h *Handler) list(c *gin.Context) {
	notes, page, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, notes, page)
}

func (h *Handler) taskStatus(c *gin.Context) {
	task, err := h.svc.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}
