package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"sakinah/backend/internal/auth"
	"sakinah/backend/internal/chat"
	"sakinah/backend/internal/config"
	"sakinah/backend/internal/logging"
	"sakinah/backend/internal/store"
)

const authUserKey = "authUser"

// Services are the collaborators the HTTP layer delegates to. They are built
// once by the caller and shared by all requests.
type Services struct {
	Store *store.Store
	Auth  *auth.Service
	Chat  *chat.Service
}

type App struct {
	cfg   config.Config
	store *store.Store
	auth  *auth.Service
	chat  *chat.Service
}

func New(cfg config.Config, svc Services) *App {
	return &App{cfg: cfg, store: svc.Store, auth: svc.Auth, chat: svc.Chat}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(logging.GinMiddleware(logging.Component("http")), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)

	authGroup := router.Group("/auth")
	authGroup.POST("/register", a.register)
	authGroup.POST("/login", a.login)
	authGroup.GET("/me", a.authMiddleware(), a.me)

	protected := router.Group("")
	protected.Use(a.authMiddleware())
	protected.POST("/api/chat", a.chatTurn)
	protected.GET("/chats", a.listChats)
	protected.GET("/chats/:chat_id/messages", a.chatMessages)
	protected.DELETE("/chats/:chat_id", a.deleteChat)
	protected.POST("/save-conversation", a.saveConversation)

	return router
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, database := "ok", "ok"
	code := http.StatusOK
	if err := a.store.Ping(ctx); err != nil {
		l := logging.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("health check database ping failed")
		status, database = "degraded", "unavailable"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"service":  "sakinah-api",
		"database": database,
	})
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		ctx := c.Request.Context()
		user, err := a.auth.ResolveUser(ctx, tokenString)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
			writeError(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		case errors.Is(err, auth.ErrUserNotFound):
			writeError(c, http.StatusUnauthorized, auth.ErrUserNotFound.Error())
			return
		default:
			l := logging.Ctx(ctx)
			l.Error().Err(err).Msg("failed to resolve bearer token user")
			writeError(c, http.StatusInternalServerError, "Failed to resolve user")
			return
		}

		c.Set(authUserKey, user)
		c.Set(logging.FieldUserID, user.ID)
		scoped := logging.Ctx(ctx).With().Str(logging.FieldUserID, user.ID).Logger()
		c.Request = c.Request.WithContext(logging.WithLogger(ctx, scoped))
		c.Next()
	}
}

func authUserFromContext(c *gin.Context) (*store.User, bool) {
	raw, ok := c.Get(authUserKey)
	if !ok {
		return nil, false
	}
	user, ok := raw.(*store.User)
	return user, ok && user != nil
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// mustBind accepts JSON or form bodies depending on Content-Type.
func mustBind(c *gin.Context, payload any) bool {
	if err := c.ShouldBind(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
