package v1

import (
	"net/http"
	"strings"

	"go-ideadaily-backend/config"
	"go-ideadaily-backend/internal/delivery/http/response"
	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionUC    domain.SessionUsecase
	authProvider domain.AuthProvider
	redirects    domain.RedirectResolver
	config       *config.Config
}

func NewSessionHandler(public *gin.RouterGroup, protected *gin.RouterGroup, sessionUC domain.SessionUsecase, authProvider domain.AuthProvider, redirects domain.RedirectResolver, cfg *config.Config, loginLimiter gin.HandlerFunc) {
	handler := &SessionHandler{
		sessionUC:    sessionUC,
		authProvider: authProvider,
		redirects:    redirects,
		config:       cfg,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/signup", loginLimiter, handler.SignUp)
		publicAuth.POST("/login", loginLimiter, handler.Login)
		publicAuth.POST("/logout", handler.Logout)
		publicAuth.POST("/refresh", handler.Refresh)
		publicAuth.POST("/recover", handler.Recover)
		publicAuth.GET("/google", handler.GoogleSignIn)
		publicAuth.GET("/callback", handler.Callback)
		publicAuth.GET("/redirect", handler.ResolveRedirect)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
		protectedAuth.POST("/refresh-profile", handler.RefreshProfile)
		protectedAuth.PUT("/password", handler.UpdatePassword)
	}
}

type SignUpRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	RedirectPath string `json:"redirect_path"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RecoverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// SignUp registers credentials with the auth service. The confirmation email
// is sent out-of-band; no session exists until the user confirms.
func (h *SessionHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	if err := h.sessionUC.SignUp(c.Request.Context(), req.Email, req.Password, req.RedirectPath); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Registration successful. Please check your email to confirm your account.", nil)
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	session, err := h.sessionUC.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Signed in", session)
}

// Logout always succeeds from the caller's perspective; backend failures are
// logged inside the manager.
func (h *SessionHandler) Logout(c *gin.Context) {
	h.sessionUC.SignOut(c.Request.Context())
	response.Success(c, http.StatusOK, "Signed out", nil)
}

func (h *SessionHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	session, err := h.authProvider.RefreshSession(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Session refreshed", session)
}

func (h *SessionHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	redirectTo := h.config.FrontendURL + "/auth/callback"
	if err := h.authProvider.RecoverPassword(c.Request.Context(), req.Email, redirectTo); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Password recovery email sent", nil)
}

// GoogleSignIn records the redirect intent and hands the browser to the
// external provider.
func (h *SessionHandler) GoogleSignIn(c *gin.Context) {
	authorizeURL, err := h.sessionUC.SignInWithGoogle(c.Request.Context(), c.Query("redirect"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Redirect(http.StatusFound, authorizeURL)
}

// Callback lands the user after the OAuth round trip and sends them to the
// validated destination: stored intent, then the redirect parameter, then
// the default path.
func (h *SessionHandler) Callback(c *gin.Context) {
	path := h.redirects.Resolve(c.Request.Context(), c.Query("state"), c.Query("redirect"), true)
	c.Redirect(http.StatusFound, h.config.FrontendURL+path)
}

// ResolveRedirect answers "where should this user land" for clients that
// handle navigation themselves instead of following the 302. Consuming, like
// Callback: asking is deciding.
func (h *SessionHandler) ResolveRedirect(c *gin.Context) {
	path := h.redirects.Resolve(c.Request.Context(), c.Query("state"), c.Query("redirect"), true)
	response.Success(c, http.StatusOK, "OK", gin.H{"path": path})
}

func (h *SessionHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, "OK", h.sessionUC.Snapshot())
}

func (h *SessionHandler) RefreshProfile(c *gin.Context) {
	h.sessionUC.RefreshUserProfile(c.Request.Context())
	response.Success(c, http.StatusOK, "Profile refreshed", h.sessionUC.Snapshot())
}

func (h *SessionHandler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := h.authProvider.UpdatePassword(c.Request.Context(), token, req.Password); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Password updated", nil)
}
