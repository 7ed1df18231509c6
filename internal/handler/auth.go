package handler

import (
	"context"
	"net/http"

	"book-tracker/backend/internal/middleware"
	"book-tracker/backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Failure messages stay generic regardless of the underlying cause so the
// endpoints cannot be used for account enumeration.
const (
	msgBadCredentials = "メールアドレスまたはパスワードが正しくありません"
	msgSignupFailed   = "アカウント作成に失敗しました"
	msgDuplicateEmail = "このメールアドレスは既に使用されています"
	msgSignedUp       = "アカウントが作成されました"
	msgSignedOut      = "ログアウトしました"
	msgSignoutFailed  = "ログアウトに失敗しました"
)

// AuthAPI abstracts the identity provider for the auth endpoints.
type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string) (*supabase.Session, error)
	User(ctx context.Context, accessToken string) (*supabase.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	auth   AuthAPI
	logger zerolog.Logger
}

// NewAuthHandler creates an AuthHandler backed by auth.
func NewAuthHandler(auth AuthAPI, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Register mounts the auth routes on rg.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/signin", h.SignIn)
	rg.POST("/signup", h.SignUp)
	rg.GET("/session", h.Session)
	rg.POST("/signout", h.SignOut)
}

// Credentials is the signin/signup request body.
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the caller-visible identity.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abortDetail(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), creds.Email, creds.Password)
	if err != nil || session.User == nil {
		abortDetail(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	setSessionCookies(c, session)
	c.JSON(http.StatusOK, UserResponse{ID: session.User.ID, Email: session.User.Email})
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abortDetail(c, http.StatusBadRequest, msgSignupFailed)
		return
	}

	session, err := h.auth.SignUp(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		if supabase.IsDuplicateUser(err) {
			abortDetail(c, http.StatusBadRequest, msgDuplicateEmail)
			return
		}
		h.logger.Warn().Err(err).Msg("signup failed")
		abortDetail(c, http.StatusBadRequest, msgSignupFailed)
		return
	}
	if session.User == nil {
		abortDetail(c, http.StatusBadRequest, msgSignupFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgSignedUp})
}

func (h *AuthHandler) Session(c *gin.Context) {
	token, err := c.Cookie(middleware.AccessTokenCookie)
	if err != nil || token == "" {
		abortDetail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.auth.User(c.Request.Context(), token)
	if err != nil || user == nil || user.ID == "" {
		abortDetail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Email: user.Email})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if token, err := c.Cookie(middleware.AccessTokenCookie); err == nil && token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
			h.logger.Warn().Err(err).Msg("signout failed")
			abortDetail(c, http.StatusInternalServerError, msgSignoutFailed)
			return
		}
	}

	clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": msgSignedOut})
}

// Cookies are httponly and Lax; Secure stays off so local development over
// plain HTTP keeps working.
func setSessionCookies(c *gin.Context, session *supabase.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, session.AccessToken, session.ExpiresIn, "/", "", false, true)
	c.SetCookie(middleware.RefreshTokenCookie, session.RefreshToken, 0, "/", "", false, true)
}

func clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", false, true)
}
