package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	repo "github.com/oksasatya/inventory-sales-api/internal/domain/repository"
	"github.com/oksasatya/inventory-sales-api/pkg/apperror"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
	"github.com/oksasatya/inventory-sales-api/pkg/mailer"
	tpl "github.com/oksasatya/inventory-sales-api/pkg/mailer/templates"
	"github.com/oksasatya/inventory-sales-api/pkg/media"
	"github.com/oksasatya/inventory-sales-api/pkg/validation"
)

const msgInvalidCredentials = "invalid email or password"

type AuthService struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Media        media.Store
	Mailer       mailer.Mailer
	Logger       *logrus.Logger
	AppName      string
	ResetCodeTTL time.Duration
	Outbound     Outbound

	now     func() time.Time
	genCode func() (string, error)
}

func NewAuthService(repo repo.UserRepository, jwt *helpers.JWTManager, store media.Store, mail mailer.Mailer, logger *logrus.Logger, appName string, resetTTL time.Duration, outbound Outbound) *AuthService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AuthService{
		Repo:         repo,
		JWT:          jwt,
		Media:        store,
		Mailer:       mail,
		Logger:       loggerOrNop(logger),
		AppName:      appName,
		ResetCodeTTL: resetTTL,
		Outbound:     outbound,
		now:          time.Now,
		genCode:      helpers.GenOTPCode,
	}
}

type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

type LoginResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	ID    string `json:"id"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkNewPassword(field, pwd string) error {
	if len(pwd) < minPasswordLength {
		return apperror.Validation("password too short", map[string]string{field: "min length 6"})
	}
	return nil
}

// Register creates an unverified account and mails the verification code.
// The account exists once persisted, whatever happens to the email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if d := missing(map[string]string{"name": in.Name, "email": in.Email, "pwd": in.Password, "rpwd": in.PasswordConfirmation}); d != nil {
		return "", apperror.Validation("all fields are required", d)
	}
	if !validation.IsEmail(in.Email) {
		return "", apperror.Validation("invalid email format", map[string]string{"email": "must be a valid email"})
	}
	if in.Password != in.PasswordConfirmation {
		return "", apperror.Validation("passwords do not match", map[string]string{"rpwd": "must match pwd"})
	}
	if err := checkNewPassword("pwd", in.Password); err != nil {
		return "", err
	}

	_, err := s.Repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return "", apperror.Conflict("email already registered")
	case !errors.Is(err, repo.ErrNotFound):
		return "", apperror.Internal("failed to register", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return "", apperror.Internal("failed to register", err)
	}
	code, err := s.genCode()
	if err != nil {
		return "", apperror.Internal("failed to register", err)
	}
	u := &entity.User{
		FullName:         in.Name,
		Email:            in.Email,
		Password:         hash,
		VerificationCode: code,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return "", apperror.Conflict("email already registered")
		}
		return "", apperror.Internal("failed to register", err)
	}

	s.sendCode(ctx, u, tpl.VerificationCode, code)
	return u.ID.Hex(), nil
}

func (s *AuthService) getUser(ctx context.Context, userID string) (*entity.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	return u, nil
}

// VerifyCode marks the user verified when code matches. Repeating a
// successful verification succeeds again.
func (s *AuthService) VerifyCode(ctx context.Context, userID, code string) error {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if code = strings.TrimSpace(code); code == "" || code != u.VerificationCode {
		return apperror.Validation("invalid verification code", nil)
	}
	if u.Verified {
		return nil
	}
	if err := s.Repo.MarkVerified(ctx, u.ID); err != nil {
		return apperror.Internal("failed to verify account", err)
	}
	return nil
}

// ResendCode replaces the pending verification code and mails the new one.
func (s *AuthService) ResendCode(ctx context.Context, userID string) error {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.Verified {
		return apperror.Validation("account already verified", nil)
	}
	code, err := s.genCode()
	if err != nil {
		return apperror.Internal("failed to issue code", err)
	}
	if err := s.Repo.SetVerificationCode(ctx, u.ID, code); err != nil {
		return apperror.Internal("failed to issue code", err)
	}
	s.sendCode(ctx, u, tpl.VerificationCode, code)
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if d := missing(map[string]string{"email": email, "pwd": password}); d != nil {
		return nil, apperror.Validation("email and password are required", d)
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Auth(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperror.Internal("failed to login", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperror.Auth(msgInvalidCredentials)
	}
	if !u.Verified {
		return nil, apperror.Forbidden("account not verified", map[string]string{"userId": u.ID.Hex()})
	}
	token, err := s.JWT.GenerateAccessToken(u.ID.Hex())
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Error("generate access token failed")
		return nil, apperror.Internal("failed to login", err)
	}
	return &LoginResult{Token: token, Name: u.FullName, ID: u.ID.Hex()}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.getUser(ctx, userID)
}

// UploadProfileImage stores the avatar under a per-user key, replacing the previous one.
func (s *AuthService) UploadProfileImage(ctx context.Context, userID, image string) (string, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	url, err := uploadImage(ctx, s.Media, s.Outbound, image, "profile_images/"+u.ID.Hex())
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdateImage(ctx, u.ID, url); err != nil {
		return "", apperror.Internal("failed to save profile image", err)
	}
	return url, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	if d := missing(map[string]string{"currentpwd": current, "newpwd": newPassword}); d != nil {
		return apperror.Validation("current and new password are required", d)
	}
	if err := checkNewPassword("newpwd", newPassword); err != nil {
		return err
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return apperror.Auth("current password is incorrect")
	}
	return s.setPassword(ctx, u.ID, newPassword)
}

// ForgotPassword issues a reset code with an expiry. Unknown emails get the
// same success so accounts cannot be enumerated.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validation.IsEmail(email) {
		return apperror.Validation("invalid email format", map[string]string{"email": "must be a valid email"})
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		s.Logger.WithField("email", email).Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return apperror.Internal("failed to issue reset code", err)
	}
	code, err := s.genCode()
	if err != nil {
		return apperror.Internal("failed to issue reset code", err)
	}
	expiresAt := s.now().UTC().Add(s.ResetCodeTTL)
	if err := s.Repo.SetResetCode(ctx, u.ID, code, expiresAt); err != nil {
		return apperror.Internal("failed to issue reset code", err)
	}
	s.sendCode(ctx, u, tpl.ResetCode, code, tpl.WithExpiresAt(expiresAt))
	return nil
}

// ResetPassword accepts only the code issued by ForgotPassword, before it expires.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if d := missing(map[string]string{"email": email, "code": code, "newpwd": newPassword}); d != nil {
		return apperror.Validation("email, code and new password are required", d)
	}
	if err := checkNewPassword("newpwd", newPassword); err != nil {
		return err
	}
	u, err := s.Repo.GetByResetCode(ctx, email, code, s.now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.Validation("invalid or expired reset code", nil)
	}
	if err != nil {
		return apperror.Internal("failed to reset password", err)
	}
	return s.setPassword(ctx, u.ID, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, id bson.ObjectID, plain string) error {
	hash, err := helpers.HashPassword(plain)
	if err != nil {
		return apperror.Internal("failed to update password", err)
	}
	if err := s.Repo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Internal("failed to update password", err)
	}
	return nil
}

// sendCode mails a code. Delivery is best effort: failures are logged and
// the user can ask for the code again.
func (s *AuthService) sendCode(ctx context.Context, u *entity.User, template, code string, opts ...tpl.Option) {
	if s.Mailer == nil {
		return
	}
	opts = append(opts, tpl.WithTime(s.now()))
	subject, text, html, err := tpl.Render(template, tpl.NewCodeData(s.AppName, u.FullName, u.Email, code, opts...))
	if err != nil {
		s.Logger.WithError(err).WithField("template", template).Error("render email failed")
		return
	}
	msg := mailer.Message{To: u.Email, Subject: subject, Text: text, HTML: html}
	err = s.Outbound.Do(ctx, func(ctx context.Context) error {
		return s.Mailer.Send(ctx, msg)
	})
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  u.ID.Hex(),
			"template": template,
		}).Warn("email delivery failed")
	}
}
