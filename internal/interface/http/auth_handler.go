package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/inventory-sales-api/internal/application"
	"github.com/oksasatya/inventory-sales-api/pkg/response"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"pwd"`
	PasswordConfirmation string `json:"rpwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"pwd" binding:"required"`
}

type verifyRequest struct {
	UserID string  `json:"userId" binding:"required"`
	Code   otpCode `json:"code" binding:"required,code6"`
}

type resendRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,mail"`
}

type resetPasswordRequest struct {
	Email       string  `json:"email" binding:"required,mail"`
	Code        otpCode `json:"code" binding:"required,code6"`
	NewPassword string  `json:"newpwd" binding:"required,pwd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentpwd" binding:"required"`
	NewPassword     string `json:"newpwd" binding:"required,pwd"`
}

type profileImageRequest struct {
	Image string `json:"image" binding:"required"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	Image     string    `json:"img,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"userId": id}, "account created, check your email for the verification code", nil)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", nil)
}

// Verify POST /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.VerifyCode(c.Request.Context(), req.UserID, string(req.Code)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "account verified", nil)
}

// ResendCode POST /auth/resend-code
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req resendRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.ResendCode(c.Request.Context(), req.UserID); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "verification code sent", nil)
}

// ForgotPassword POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "if the email exists, a reset code has been sent", nil)
}

// ResetPassword POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, string(req.Code), req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// Profile GET /auth
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profileResponse{
		ID:        u.ID.Hex(),
		Name:      u.FullName,
		Email:     u.Email,
		Verified:  u.Verified,
		Image:     u.ImageURL,
		CreatedAt: u.CreatedAt,
	}, "profile", nil)
}

// UploadProfileImage POST /auth/profile-image
func (h *AuthHandler) UploadProfileImage(c *gin.Context) {
	var req profileImageRequest
	if !bind(c, &req) {
		return
	}
	url, err := h.Svc.UploadProfileImage(c.Request.Context(), userID(c), req.Image)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"img": url}, "profile image updated", nil)
}

// ChangePassword PUT /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), userID(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}
