package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/pkg/helpers"
	"github.com/oksasatya/invest-tracker/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	bearerScheme = "bearer"

	// MsgUnauthenticated is the body message for every rejected request.
	MsgUnauthenticated = "unauthenticated"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth reads a Bearer token from the Authorization header, verifies it and
// attaches the subject to the request context. Every failure is the same
// 401; the reason only reaches the debug log.
func Auth(verifier TokenVerifier, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject(c, logger, "missing or malformed authorization header")
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, helpers.ErrTokenExpired) {
				reason = "token expired"
			}
			reject(c, logger, reason)
			return
		}
		c.Set(CtxUserIDKey, userID)
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func reject(c *gin.Context, logger *logrus.Logger, reason string) {
	helpers.LogDebug(logger, "bearer token rejected", logrus.Fields{
		"reason":     reason,
		"request_id": c.GetString(CtxRequestIDKey),
	})
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	response.Error(c, http.StatusUnauthorized, MsgUnauthenticated, nil)
}

// bearerToken splits "<scheme> <token>". The scheme is case-insensitive and
// the token must be a single non-empty word.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimLeft(token, " ")
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return "", false
	}
	return token, true
}
