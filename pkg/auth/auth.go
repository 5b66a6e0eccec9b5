package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnavshah/storeplan-api/pkg/config"
	"github.com/arnavshah/storeplan-api/pkg/database"
	"github.com/arnavshah/storeplan-api/pkg/logger"
)

var jwtAlgorithm = jwt.SigningMethodHS256

// bcryptCost is lowered by tests
var bcryptCost = 14

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator issues admin tokens and signs API keys
type Authenticator struct {
	jwtSecret     []byte
	masterSecret  []byte
	ttl           time.Duration
	adminUsername string
	adminPassword string
	log           logger.Logger
}

// New builds an Authenticator. An empty JWT secret is replaced by a random
// one, so tokens do not survive a restart.
func New(cfg config.AuthConfig, log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NopLogger{}
	}
	secret := cfg.JWTSecret
	if secret == "" {
		log.Warnf("no JWT secret configured, using an ephemeral one")
		secret = uuid.NewString()
	}
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		jwtSecret:     []byte(secret),
		masterSecret:  []byte(cfg.APIMasterSecret),
		ttl:           ttl,
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
		log:           log,
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (a *Authenticator) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken verifies a JWT token
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// EnsureAdminExists creates the configured admin when no admin exists yet
func (a *Authenticator) EnsureAdminExists(db *gorm.DB) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(a.adminPassword)
	if err != nil {
		return err
	}
	user := database.MasterUser{
		Username:     a.adminUsername,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	a.log.Infof("default admin user created: %s", a.adminUsername)
	return nil
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (a *Authenticator) GenerateHMACKey(userID string) string {
	return userID + "." + a.sign(userID)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its user ID
func (a *Authenticator) VerifyHMACKey(key string) (string, error) {
	if len(a.masterSecret) == 0 {
		return "", errors.New("api keys are not configured")
	}
	userID, provided, ok := strings.Cut(key, ".")
	if !ok || userID == "" || strings.Contains(provided, ".") {
		return "", errors.New("invalid key format")
	}

	if !hmac.Equal([]byte(provided), []byte(a.sign(userID))) {
		return "", errors.New("invalid signature")
	}
	return userID, nil
}

// KeyPreview masks a key for listings
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

func (a *Authenticator) sign(userID string) string {
	h := hmac.New(sha256.New, a.masterSecret)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}
