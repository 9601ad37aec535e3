package review

import (
	"errors"

	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/reviews")
	g.GET("", h.listApproved)
	g.GET("/stats", h.stats)
	g.POST("", h.submit)

	a := g.Group("", authMW)
	a.GET("/pending", h.listPending)
	a.PATCH("/:id/approval", h.setApproval)
	a.DELETE("/:id", h.remove)
}

func (h *Handler) submit(c *gin.Context) {
	var dto SubmitReviewDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	r, err := h.svc.Submit(&dto)
	switch {
	case errors.Is(err, errInappropriateContent):
		response.UnprocessableEntity(c, "Your submission contains language we can't publish.")
		return
	case errors.Is(err, errInvalidName):
		response.UnprocessableEntity(c, "Names can only contain letters, spaces, apostrophes, hyphens, and periods.")
		return
	case errors.Is(err, errInvalidRating):
		response.UnprocessableEntity(c, "Rating must be a whole number between 1 and 5.")
		return
	case err != nil:
		response.InternalError(c, err)
		return
	}

	response.Created(c, r)
}

func (h *Handler) listApproved(c *gin.Context) {
	reviews, page, err := h.svc.ListApproved(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, reviews, page)
}

func (h *Handler) listPending(c *gin.Context) {
	reviews, page, err := h.svc.ListPending(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, reviews, page)
}

func (h *Handler) setApproval(c *gin.Context) {
	var dto SetApprovalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetApproval(c.Param("id"), *dto.Approved); err != nil {
		if errors.Is(err, errReviewNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id"), "approved": *dto.Approved})
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, errReviewNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.GetStats()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}
