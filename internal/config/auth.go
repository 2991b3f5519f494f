package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultJWTSecret  = "change-me-jwt-secret"
	defaultJWTIssuer  = "tierraalta"
	defaultTokenTTL   = 24 * time.Hour
	defaultBcryptCost = 10
)

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	Issuer     string        `yaml:"issuer"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

func (a *AuthConfig) applyDefaults() {
	a.JWTSecret = strings.TrimSpace(a.JWTSecret)
	if a.JWTSecret == "" {
		a.JWTSecret = defaultJWTSecret
	}
	if a.Issuer == "" {
		a.Issuer = defaultJWTIssuer
	}
	if a.TokenTTL == 0 {
		a.TokenTTL = defaultTokenTTL
	}
	if a.BcryptCost == 0 {
		a.BcryptCost = defaultBcryptCost
	}
}

func (a *AuthConfig) validate(env string) error {
	if a.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}
	if a.BcryptCost < 4 || a.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be within 4..31")
	}
	if isProdLike(env) && isEmptyOrDefault(a.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
