package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sakinah/backend/internal/auth"
	"sakinah/backend/internal/logging"
)

func (a *App) register(c *gin.Context) {
	var payload registerRequest
	if !mustJSON(c, &payload) {
		return
	}

	user, err := a.auth.Register(
		c.Request.Context(),
		strings.TrimSpace(payload.Username),
		strings.TrimSpace(payload.Email),
		payload.Password,
	)
	switch {
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrUsernameTaken):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (a *App) login(c *gin.Context) {
	var payload loginRequest
	if !mustBind(c, &payload) {
		return
	}

	token, err := a.auth.Login(c.Request.Context(), strings.TrimSpace(payload.Username), payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.Header("WWW-Authenticate", "Bearer")
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		l := logging.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("login failed")
		writeError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.UTC(),
	})
}

func (a *App) me(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
