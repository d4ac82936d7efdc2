package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/response"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/validator"
)

type Handler struct {
	manager      *Manager
	secureCookie bool
}

func NewHandler(manager *Manager, secureCookie bool) *Handler {
	validator.RegisterBindingRules()
	return &Handler{manager: manager, secureCookie: secureCookie}
}

// Login godoc
// @Summary Reviewer sign-in
// @Description Verifies email and password with Firebase and opens a session. The token is returned and also set as an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.APIResponse{data=LoginResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	sess, token, err := h.manager.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", h.secureCookie, true)

	response.Success(c, LoginResponse{Token: token, Session: sess}, "Signed in")
}

// Logout godoc
// @Summary Reviewer sign-out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	sess, ok := FromContext(c)
	if !ok {
		response.Unauthorized(c, "Sign in required", "AUTH_REQUIRED")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.secureCookie, true)

	if err := h.manager.SignOut(c.Request.Context(), sess.ID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil, "Signed out")
}

// Me godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=Session}
// @Failure 401 {object} response.APIResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	sess, ok := FromContext(c)
	if !ok {
		response.Unauthorized(c, "Sign in required", "AUTH_REQUIRED")
		return
	}
	response.Success(c, sess)
}
