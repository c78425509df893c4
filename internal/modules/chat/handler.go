package chat

import (
	"errors"

	"github.com/circle-space/core/internal/middleware"
	"github.com/circle-space/core/internal/pkg/response"
	"github.com/circle-space/core/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	c := rg.Group("/chat", authMW)

	c.GET("/:userId", h.privateChat)
	c.GET("/group/:id", h.groupChat)
	c.POST("/group", h.createGroup)
	c.POST("/group/:id/image", h.presignGroupImage)
}

func (h *Handler) privateChat(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	chat, err := h.svc.PrivateChat(account, c.Param("userId"))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	response.OK(c, chat)
}

func (h *Handler) groupChat(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	chat, err := h.svc.GroupChat(account, c.Param("id"))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	response.OK(c, chat)
}

func (h *Handler) createGroup(c *gin.Context) {
	var dto createGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	account := middleware.CurrentAccount(c)
	chat, err := h.svc.CreateGroup(account, dto)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	response.Created(c, chat)
}

func (h *Handler) presignGroupImage(c *gin.Context) {
	var dto presignImageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	account := middleware.CurrentAccount(c)
	res, err := h.svc.PresignGroupImage(c.Request.Context(), account, c.Param("id"), dto.ContentType)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	response.Created(c, res)
}

func (h *Handler) respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errChatNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errNotFriends),
		errors.Is(err, errNotParticipant),
		errors.Is(err, errParticipantWrong),
		errors.Is(err, errNotGroupOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, errSelfChat),
		errors.Is(err, errGroupTooSmall),
		errors.Is(err, errEmptyMessage),
		errors.Is(err, errBadImageType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, storage.ErrDisabled):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
