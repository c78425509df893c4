package user

import (
	"errors"

	"github.com/circle-space/core/internal/middleware"
	"github.com/circle-space/core/internal/models"
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
	u := rg.Group("/user", authMW)

	u.GET("/profile", h.profile)
	u.POST("/logout", h.logout)
	u.POST("/profile-image", h.presignProfileImage)

	u.PATCH("/:id/freeze", h.freeze)
	u.PATCH("/:id/restore", middleware.RequireRole(models.RoleAdmin), h.restore)
	u.PATCH("/:id/change-role", middleware.RequireRole(models.RoleAdmin), h.changeRole)

	u.GET("/friend-requests", h.pendingFriendRequests)
	u.POST("/friend-request/:id", h.sendFriendRequest)
	u.PATCH("/friend-request/:id/accept", h.acceptFriendRequest)
}

func (h *Handler) profile(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	response.OK(c, h.svc.Profile(account))
}

func (h *Handler) logout(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	claims := middleware.CurrentClaims(c)
	if err := h.svc.Logout(account, claims, c.Query("flag")); err != nil {
		if errors.Is(err, errBadLogoutFlag) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) presignProfileImage(c *gin.Context) {
	var dto presignImageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	account := middleware.CurrentAccount(c)
	res, err := h.svc.PresignProfileImage(c.Request.Context(), account, dto.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, errBadImageType):
			response.BadRequest(c, err.Error())
		case errors.Is(err, storage.ErrDisabled):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, res)
}

func (h *Handler) freeze(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if err := h.svc.Freeze(account, c.Param("id")); err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) restore(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if err := h.svc.Restore(account, c.Param("id")); err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) changeRole(c *gin.Context) {
	var dto changeRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	account := middleware.CurrentAccount(c)
	if err := h.svc.ChangeRole(account, c.Param("id"), dto.Role); err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) pendingFriendRequests(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	reqs, err := h.svc.PendingFriendRequests(account)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, reqs)
}

func (h *Handler) sendFriendRequest(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	req, err := h.svc.SendFriendRequest(account, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, errSelfFriendRequest):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errFriendRequestExists):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, req)
}

func (h *Handler) acceptFriendRequest(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if err := h.svc.AcceptFriendRequest(account, c.Param("id")); err != nil {
		if errors.Is(err, errRequestNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, errNotAllowed),
		errors.Is(err, errRestoreSelf),
		errors.Is(err, errRoleEscalation),
		errors.Is(err, errRoleTargetTooHigh):
		response.Forbidden(c, err.Error())
	case errors.Is(err, errAlreadyFrozen), errors.Is(err, errNotFrozen):
		response.Conflict(c, err.Error())
	case errors.Is(err, errUnknownRole):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
