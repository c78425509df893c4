package auth

import (
	"errors"

	"github.com/circle-space/core/internal/middleware"
	"github.com/circle-space/core/internal/pkg/response"
	"github.com/circle-space/core/internal/pkg/token"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, refreshMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/signup", h.signup)
	a.POST("/login", h.login)
	a.POST("/confirm-email", h.confirmEmail)
	a.POST("/send-confirm-email-otp", h.sendConfirmOTP)
	a.POST("/signup-gmail", h.signupGmail)
	a.POST("/login-gmail", h.loginGmail)
	a.POST("/forgot-password", h.forgotPassword)
	a.POST("/verify-forgot-password", h.verifyForgotPassword)
	a.POST("/reset-forgot-password", h.resetForgotPassword)
	a.POST("/refresh-token", refreshMW, h.refreshToken)
}

func (h *Handler) signup(c *gin.Context) {
	var dto signupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Signup(dto); err != nil {
		if errors.Is(err, errEmailExists) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, nil)
}

func (h *Handler) login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	creds, err := h.svc.Login(dto)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidLogin):
			response.Unauthorized(c, err.Error())
		case errors.Is(err, errNotConfirmed):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, creds)
}

func (h *Handler) confirmEmail(c *gin.Context) {
	var dto confirmEmailDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ConfirmEmail(dto); err != nil {
		h.respondOTPError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) sendConfirmOTP(c *gin.Context) {
	var dto emailDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.SendConfirmOTP(dto.Email); err != nil {
		h.respondOTPError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) signupGmail(c *gin.Context) {
	var dto googleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	creds, err := h.svc.SignupWithGoogle(c.Request.Context(), dto.IDToken)
	if err != nil {
		h.respondGoogleError(c, err)
		return
	}
	response.Created(c, creds)
}

func (h *Handler) loginGmail(c *gin.Context) {
	var dto googleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	creds, err := h.svc.LoginWithGoogle(c.Request.Context(), dto.IDToken)
	if err != nil {
		h.respondGoogleError(c, err)
		return
	}
	response.OK(c, creds)
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var dto emailDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.SendForgetCode(dto.Email); err != nil {
		h.respondOTPError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) verifyForgotPassword(c *gin.Context) {
	var dto confirmEmailDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.VerifyForgetCode(dto); err != nil {
		h.respondOTPError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) resetForgotPassword(c *gin.Context) {
	var dto resetPasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ResetPassword(dto); err != nil {
		h.respondOTPError(c, err)
		return
	}
	response.OK(c, nil)
}

// refreshToken runs behind the refresh-half auth middleware: by the time
// it is reached the old pair is decoded and attached to the context.
func (h *Handler) refreshToken(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	claims := middleware.CurrentClaims(c)
	if account == nil || claims == nil {
		response.Unauthorized(c, "")
		return
	}
	creds, err := h.svc.Refresh(&token.Decoded{Account: account, Claims: claims})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, creds)
}

func (h *Handler) respondOTPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidAccount), errors.Is(err, errNoPendingOTP):
		response.NotFound(c, err.Error())
	case errors.Is(err, errAlreadyVerified):
		response.Conflict(c, err.Error())
	case errors.Is(err, errStillBanned), errors.Is(err, errCooldownActive):
		response.TooManyRequests(c, err.Error())
	case errors.Is(err, errOTPExpired):
		response.Gone(c, err.Error())
	case errors.Is(err, errInvalidOTP):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) respondGoogleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errGoogleToken):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, errGoogleDisabled):
		response.BadRequest(c, err.Error())
	case errors.Is(err, errEmailExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, errInvalidLogin):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, errWrongProvider):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
