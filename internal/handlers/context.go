package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/middleware"
	"github.com/mchen88/cartly/pkg/errors"
	"github.com/mchen88/cartly/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated user id or writes a 401 and
// returns false.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}
