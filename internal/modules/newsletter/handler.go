package newsletter

import (
	"errors"

	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const genericMailFailure = "We couldn't send the email just now, please try again later."

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/newsletter")
	g.GET("/status", h.status)
	g.POST("/subscribe", h.subscribe)
	g.GET("/verify", h.verify)           // ?token=...
	g.GET("/unsubscribe", h.unsubscribe) // ?token=... or ?email=...
	g.POST("/unsubscribe", h.unsubscribe)

	a := g.Group("", authMW)
	a.GET("/subscribers", h.list)
	a.DELETE("/subscribers/batch", h.unsubscribeBatch)
}

func (h *Handler) subscribe(c *gin.Context) {
	var dto SubscribeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	enabled, err := h.svc.Enabled()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !enabled {
		response.BadRequest(c, "Newsletter signups are currently closed.")
		return
	}

	sub, err := h.svc.Subscribe(dto.Email)
	switch {
	case errors.Is(err, errAlreadySubscribed):
		response.Conflict(c, "This address is already subscribed.")
		return
	case errors.Is(err, errSubscribeConflict):
		response.Conflict(c, "This address is being subscribed right now, please retry in a moment.")
		return
	case err != nil:
		response.UnprocessableEntity(c, genericMailFailure)
		return
	}

	response.Created(c, gin.H{"email": sub.Email})
}

func (h *Handler) verify(c *gin.Context) {
	sub, err := h.svc.Verify(c.Query("token"))
	if errors.Is(err, errTokenInvalid) {
		response.BadRequest(c, "This verification link is invalid or has expired.")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"email": sub.Email, "verified": true})
}

func (h *Handler) unsubscribe(c *gin.Context) {
	token := c.Query("token")
	email := c.Query("email")

	var err error
	switch {
	case token != "":
		err = h.svc.UnsubscribeByToken(token)
	case email != "":
		err = h.svc.Unsubscribe(email)
	default:
		response.BadRequest(c, "missing token or email")
		return
	}
	if err != nil && !errors.Is(err, errTokenInvalid) {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "unsubscribed"})
}

func (h *Handler) status(c *gin.Context) {
	enabled, err := h.svc.Enabled()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"enable": enabled})
}

func (h *Handler) list(c *gin.Context) {
	subs, page, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, subs, page)
}

func (h *Handler) unsubscribeBatch(c *gin.Context) {
	var body BatchUnsubscribeDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	deleted, err := h.svc.BatchUnsubscribe(body.Emails, body.All)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted_count": deleted})
}
