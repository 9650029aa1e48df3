package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meetbase/internal/apperr"
	"meetbase/internal/auth"
	"meetbase/internal/config"
	"meetbase/internal/mailer"
	"meetbase/internal/middleware"
	"meetbase/internal/models"
	"meetbase/internal/storage"
	"meetbase/internal/utils"
)

type AuthController struct {
	db        *gorm.DB
	mail      mailer.Sender
	store     *storage.LocalStore
	log       *zap.Logger
	jwtSecret []byte
	jwtTTL    time.Duration
	otpLength int
}

func NewAuthController(db *gorm.DB, mail mailer.Sender, store *storage.LocalStore, log *zap.Logger, cfg *config.Config) *AuthController {
	return &AuthController{
		db:        db,
		mail:      mail,
		store:     store,
		log:       log,
		jwtSecret: []byte(cfg.JWTSecret),
		jwtTTL:    time.Duration(cfg.JWTTTLHours) * time.Hour,
		otpLength: cfg.OTPLength,
	}
}

type registerPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// Register creates an unverified account, emails the verification code,
// and echoes the code in the response for the existing clients that
// expect it there.
func (a *AuthController) Register(c *gin.Context) {
	var p registerPayload
	if err := c.ShouldBind(&p); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Password = strings.TrimSpace(p.Password)
	if p.Name == "" || p.Email == "" || p.Password == "" {
		fail(c, apperr.Validation("name, email and password are required"))
		return
	}
	role := strings.TrimSpace(p.Role)
	if role == "" {
		role = models.RoleStudent
	}

	var existing models.User
	err := a.db.Where("email = ?", p.Email).First(&existing).Error
	if err == nil {
		fail(c, apperr.Conflict("email already exists"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, apperr.Internal(err))
		return
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	code, err := utils.GenerateNumericOTP(a.otpLength)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	user := models.User{
		Name:             p.Name,
		Email:            p.Email,
		Password:         hash,
		Role:             role,
		IsVerified:       false,
		VerificationCode: &code,
	}

	if fh, err := c.FormFile("profile_image"); err == nil && a.store != nil {
		url, err := a.store.Save(fh)
		if err != nil {
			fail(c, apperr.Internal(err))
			return
		}
		user.ProfileImageURL = &url
	}

	if err := a.db.Create(&user).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	// send the code; delivery failures are logged, not surfaced
	go func() {
		if a.mail == nil {
			return
		}
		body := fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\n\nEnter it to activate your account.", user.Name, code)
		if err := a.mail.Send(user.Email, "Verify your account", body); err != nil && a.log != nil {
			a.log.Warn("verification mail failed", zap.String("email", user.Email), zap.Error(err))
		}
	}()

	c.JSON(http.StatusCreated, gin.H{"user": user, "verification_code": code})
}

type verifyOTPPayload struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP exchanges the emailed code for a verified account. A
// cleared code never matches, so re-verifying an already verified
// account fails.
func (a *AuthController) VerifyOTP(c *gin.Context) {
	var p verifyOTPPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("User not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}

	if user.VerificationCode == nil || p.OTP == "" || *user.VerificationCode != p.OTP {
		fail(c, apperr.Validation("invalid verification code"))
		return
	}

	updates := map[string]interface{}{"is_verified": true, "verification_code": nil}
	if err := a.db.Model(&user).Updates(updates).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account verified"})
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthController) Login(c *gin.Context) {
	var p loginPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("User not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}

	if !user.IsVerified {
		fail(c, apperr.Forbidden("Account not verified"))
		return
	}
	if err := auth.CheckPasswordHash(user.Password, p.Password); err != nil {
		fail(c, apperr.Unauthorized("Invalid password"))
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role, a.jwtSecret, a.jwtTTL)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// VerifyToken echoes the claims of a valid bearer token.
func (a *AuthController) VerifyToken(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "email": claims.Email, "role": claims.Role})
}

func (a *AuthController) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	var user models.User
	if err := a.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("User not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
