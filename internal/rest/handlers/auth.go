package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	authform "github.com/markgregr/todoAgent_REST_server/internal/rest/forms/auth"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/models"
	authsvc "github.com/markgregr/todoAgent_REST_server/internal/services/auth"
	"github.com/markgregr/todoAgent_REST_server/pkg/rest/response"
)

type Auth struct {
	log  *logrus.Entry
	auth *authsvc.Service
}

func NewAuthHandler(auth *authsvc.Service, log *logrus.Logger) *Auth {
	return &Auth{
		log:  logrus.NewEntry(log),
		auth: auth,
	}
}

func (h *Auth) EnrichRoutes(router *gin.Engine) {
	authRoutes := router.Group("/api/auth")
	authRoutes.POST("/register", h.registerAction)
	authRoutes.POST("/login", h.loginAction)
	authRoutes.POST("/logout", h.logoutAction)
}

func (h *Auth) registerAction(c *gin.Context) {
	const op = "handlers.Auth.registerAction"
	log := h.log.WithField("operation", op)
	log.Info("register user")

	form, verr := authform.NewRegisterForm().ParseAndValidate(c)
	if verr != nil {
		response.HandleError(verr, c)
		return
	}

	user, err := h.auth.Register(c.Request.Context(),
		form.(*authform.RegisterForm).Email,
		form.(*authform.RegisterForm).Password,
	)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to register user", op)
		response.HandleError(resolveAuthInputError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.RegisterResponse{
		Success: true,
		Message: "User registered successfully",
		User:    models.NewUser(user),
	})
}

func (h *Auth) loginAction(c *gin.Context) {
	const op = "handlers.Auth.loginAction"
	log := h.log.WithField("operation", op)
	log.Info("login user")

	form, verr := authform.NewLoginForm().ParseAndValidate(c)
	if verr != nil {
		response.HandleError(verr, c)
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(),
		form.(*authform.LoginForm).Email,
		form.(*authform.LoginForm).Password,
	)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to login user", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	// Cookie for browser clients; deliberately readable by JS, the SPA
	// stores the token itself.
	maxAge := int(h.auth.TokenTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", "Bearer "+token, maxAge, "/", "", false, false)

	c.JSON(http.StatusOK, models.LoginResponse{
		Success:     true,
		AccessToken: token,
		TokenType:   "bearer",
		User:        models.NewUser(user),
	})
}

func (h *Auth) logoutAction(c *gin.Context) {
	const op = "handlers.Auth.logoutAction"
	h.log.WithField("operation", op).Info("logout user")

	// Stateless tokens: logout is client-side discard.
	c.JSON(http.StatusOK, models.LogoutResponse{
		Success: true,
		Message: "Successfully logged out",
	})
}

// resolveAuthInputError downgrades registration validation failures to 400:
// bad email format and weak passwords are input errors, not schema errors.
func resolveAuthInputError(err error) response.Error {
	resolved := response.ResolveError(err)
	if ve, ok := resolved.(*response.ValidationError); ok {
		for field, msg := range ve.Errors {
			return response.NewBadRequestError(msg.Message + " (" + field + ")")
		}
	}
	return resolved
}
