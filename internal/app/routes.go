package app

import (
	"time"

	"github.com/circle-space/core/internal/middleware"
	"github.com/circle-space/core/internal/modules/auth"
	"github.com/circle-space/core/internal/modules/chat"
	"github.com/circle-space/core/internal/modules/gateway"
	"github.com/circle-space/core/internal/modules/user"
	"github.com/circle-space/core/internal/pkg/mail"
	pkgredis "github.com/circle-space/core/internal/pkg/redis"
	"github.com/circle-space/core/internal/pkg/response"
	"github.com/circle-space/core/internal/pkg/storage"
	"github.com/circle-space/core/internal/pkg/token"
	"github.com/gin-gonic/gin"
)

var processStart = time.Now()

// wire builds every module and mounts its routes.
func (a *App) wire(rc *pkgredis.Client) (*gateway.Hub, error) {
	r := a.router
	db := a.db
	cfg := a.cfg

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	sigs := token.NewSignatures(cfg.Security)
	tokenStore := token.NewStore(db)
	accessMW := middleware.Auth(sigs, tokenStore, token.TypeAccess)
	refreshMW := middleware.Auth(sigs, tokenStore, token.TypeRefresh)

	mailer := mail.New(cfg.Mail, a.logger)
	st, err := storage.New(cfg.S3)
	if err != nil {
		return nil, err
	}

	accounts := auth.NewAccounts(db)
	otpCtrl := auth.NewOTPController(accounts, mailer, a.logger)
	authSvc := auth.NewService(accounts, otpCtrl, sigs, tokenStore, cfg.Security.GoogleClientIDs, a.logger)
	userSvc := user.NewService(user.NewUsers(db), sigs, tokenStore, st, a.logger)
	chatSvc := chat.NewService(chat.NewChats(db), st, a.logger)

	hub := gateway.NewHub(sigs, tokenStore, gateway.NewPresence(), rc, a.logger)
	hub.OnConnect(chat.NewSockets(chatSvc, hub, a.logger).Attach)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(rc.Raw()))

	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{
			"status": "ok",
			"uptime": time.Since(processStart).Milliseconds(),
		})
	})

	auth.NewHandler(authSvc).RegisterRoutes(api, refreshMW)
	user.NewHandler(userSvc).RegisterRoutes(api, accessMW)
	chat.NewHandler(chatSvc).RegisterRoutes(api, accessMW)

	socketHandler := hub.Handler()
	r.GET("/socket.io/*any", gin.WrapH(socketHandler))
	r.POST("/socket.io/*any", gin.WrapH(socketHandler))

	return hub, nil
}
