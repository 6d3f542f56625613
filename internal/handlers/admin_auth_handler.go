package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
)

// AdminAuthHandler issues JWT sessions for the administrative read
// endpoints. Credentials come from the environment only, never from
// config files.
type AdminAuthHandler struct {
	jwtSecret  []byte
	totpSecret string
	logger     *logrus.Logger
}

// AdminLoginRequest is the POST /api/admin/login body.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code" binding:"required"`
}

// AdminJWTClaims are the session token claims.
type AdminJWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NewAdminAuthHandler reads ADMIN_TOTP_SECRET, ADMIN_PASSWORD and
// ADMIN_JWT_SECRET from the environment. Missing secrets leave the
// admin surface configured but rejecting every login.
func NewAdminAuthHandler(logger *logrus.Logger) *AdminAuthHandler {
	totpSecret := os.Getenv("ADMIN_TOTP_SECRET")
	if totpSecret == "" || os.Getenv("ADMIN_PASSWORD") == "" {
		logger.Warn("ADMIN_TOTP_SECRET or ADMIN_PASSWORD not set, admin login disabled")
	}

	jwtSecret := []byte(os.Getenv("ADMIN_JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Warn("ADMIN_JWT_SECRET not set, admin login disabled")
	}

	return &AdminAuthHandler{
		jwtSecret:  jwtSecret,
		totpSecret: totpSecret,
		logger:     logger,
	}
}

// JWTSecret exposes the session secret to the auth middleware.
func (h *AdminAuthHandler) JWTSecret() []byte {
	return h.jwtSecret
}

// Login validates username, password and TOTP code and returns a
// short-lived JWT.
// POST /api/admin/login
func (h *AdminAuthHandler) Login(c *gin.Context) {
	if h.totpSecret == "" || len(h.jwtSecret) == 0 || os.Getenv("ADMIN_PASSWORD") == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin authentication is not configured"})
		return
	}

	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	expectedUsername := os.Getenv("ADMIN_USERNAME")
	if expectedUsername == "" {
		expectedUsername = "admin"
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(expectedUsername)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(os.Getenv("ADMIN_PASSWORD"))) == 1
	if !usernameOK || !passwordOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !totp.Validate(req.TOTPCode, h.totpSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid TOTP code"})
		return
	}

	claims := AdminJWTClaims{
		Username: req.Username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "securevault",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		h.logger.WithError(err).Error("failed to sign admin token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
