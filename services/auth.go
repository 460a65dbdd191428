package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"journal-hand/config"
	"journal-hand/models"
)

// AuthService prüft Anmeldedaten und stellt kurzlebige Bearer-Tokens aus.
type AuthService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewAuthService erstellt eine neue Instanz des AuthService.
func NewAuthService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *AuthService {
	return &AuthService{Config: cfg, DB: db, Logger: logger}
}

// Validate prüft E-Mail und Passwort und gibt bei Erfolg ein signiertes,
// zeitlich begrenztes JWT zurück. Unbekannte E-Mail und falsches Passwort
// werden identisch als UnauthorizedError beantwortet.
func (s *AuthService) Validate(ctx context.Context, email, password string) (string, error) {
	var researcher models.Researcher
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&researcher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &UnauthorizedError{}
		}
		return "", &ServiceError{Op: "lookup researcher by email", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(researcher.Password), []byte(password)); err != nil {
		return "", &UnauthorizedError{}
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.Config.TokenTTLMinutes) * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return "", &ServiceError{Op: "sign token", Err: err}
	}

	s.Logger.Info("Token issued", zap.String("subject", email))
	return signed, nil
}

// ParseToken validiert ein Bearer-Token und gibt dessen Claims zurück.
func (s *AuthService) ParseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, &UnauthorizedError{}
	}
	return claims, nil
}
