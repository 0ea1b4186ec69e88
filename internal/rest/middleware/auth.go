package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	authsvc "github.com/markgregr/todoAgent_REST_server/internal/services/auth"
	"github.com/markgregr/todoAgent_REST_server/pkg/rest/helper"
	"github.com/markgregr/todoAgent_REST_server/pkg/rest/response"
)

// userKey is where Authenticate stores the resolved user in the gin context.
const userKey = "current_user"

// Authenticate verifies the bearer token and loads the caller. Requests
// without a valid token are rejected with 401 before the handler runs.
func Authenticate(auth *authsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helper.ExtractTokenFromHeaders(c)
		if token == "" {
			response.HandleError(response.NewUnauthorizedError(), c)
			return
		}

		user, err := auth.UserByToken(c.Request.Context(), token)
		if err != nil {
			response.HandleError(response.ResolveError(err), c)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated caller stored by Authenticate.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
