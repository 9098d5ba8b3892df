package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/virtualstage/backlot/internal/auth"
	"github.com/virtualstage/backlot/internal/auth/providers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/permissions"
	"github.com/virtualstage/backlot/internal/services"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/mail"
	"github.com/virtualstage/backlot/pkg/metrics"
	"github.com/virtualstage/backlot/pkg/response"
)

// AuthHandler manages registration, login, token refresh and the profile
// endpoints for the calling user.
type AuthHandler struct {
	db       *gorm.DB
	sessions *iauth.SessionService
	local    *providers.LocalProvider
	users    *services.UserService
	checker  *permissions.Checker
	resets   *services.PasswordResetService
}

// NewAuthHandler wires the authentication stack. The mailer may be nil;
// password reset emails are then skipped.
func NewAuthHandler(db *gorm.DB, sessions *iauth.SessionService, mailer mail.Mailer) (*AuthHandler, error) {
	local, err := providers.NewLocalProvider(db, providers.LocalConfig{})
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db, audit)
	if err != nil {
		return nil, err
	}
	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}
	resets, err := services.NewPasswordResetService(db, mailer)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		db:       db,
		sessions: sessions,
		local:    local,
		users:    users,
		checker:  checker,
		resets:   resets,
	}, nil
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=128"`
	LastName  string `json:"last_name" validate:"omitempty,max=128"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Create(requestContext(c), services.CreateUserInput{
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		AssignDefaultRole: true,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	pair, _, err := h.sessions.CreateSession(user.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   user,
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.local.Authenticate(providers.AuthenticateInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		switch {
		case errors.Is(err, providers.ErrAccountLocked):
			response.Error(c, apperrors.New("ACCOUNT_LOCKED", "Account temporarily locked. Try again later.", http.StatusUnauthorized))
		case errors.Is(err, providers.ErrAccountDisabled):
			response.Error(c, apperrors.New("ACCOUNT_DISABLED", "Account is disabled", http.StatusUnauthorized))
		default:
			response.Error(c, apperrors.ErrUnauthorized)
		}
		return
	}

	pair, _, err := h.sessions.CreateSession(user.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, apperrors.ErrInternalServer)
		return
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	perms, _ := h.checker.GetUserPermissions(requestContext(c), user.ID)

	profile, err := h.users.GetByID(requestContext(c), user.ID)
	if err != nil {
		profile = user
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens":      tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":        profile,
		"permissions": perms,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.RefreshSession(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString(middleware.CtxSessionIDKey)
	if sid == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sid); err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/auth/me and GET /api/auth/profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	perms, _ := h.checker.GetUserPermissions(requestContext(c), userID)

	response.Success(c, http.StatusOK, gin.H{
		"user":        user,
		"permissions": perms,
	})
}

type updateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=128"`
	LastName  *string `json:"last_name" validate:"omitempty,max=128"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=512"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Bio       *string `json:"bio" validate:"omitempty,max=2048"`
}

// PUT /api/auth/profile/update
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Update(requestContext(c), userID, services.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		Phone:     req.Phone,
		Bio:       req.Bio,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.local.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, providers.ErrInvalidCredentials) {
			response.Error(c, apperrors.NewBadRequest("Current password is incorrect"))
			return
		}
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	// Password changes invalidate every other session.
	_ = h.sessions.RevokeUserSessions(userID)

	response.Success(c, http.StatusOK, gin.H{"message": "Password updated successfully"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/forgot-password
//
// Always answers 200 so the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.resets.RequestReset(requestContext(c), req.Email); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.StatusCode == http.StatusBadRequest {
			response.Error(c, err)
			return
		}
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "If the account exists, a reset link has been sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.resets.ResetPassword(requestContext(c), strings.TrimSpace(req.Token), req.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password has been reset"})
}
