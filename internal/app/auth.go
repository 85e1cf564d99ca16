package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	sessionKeyTpl  = "session:%s"
	resetKeyTpl    = "reset:%s"
	passwordKey    = "admin:password_bcrypt"
	sessionPrefix  = "sk-lsktt-"
	resetPrefix    = "rs-lsktt-"
	resetTokenTTL  = 15 * time.Minute
	tokenRandBytes = 12
)

// Auth is the single authenticated-user gate: one admin, password checked
// against a bcrypt hash, sessions held in redis with a sliding TTL. A reset
// overrides the configured hash with one stored in redis.
type Auth struct {
	enabled      bool
	redis        *redis.Client
	tokenHeader  string
	sessionTTL   time.Duration
	passwordHash string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	if config.Auth.AdminPasswordBcrypt == "" {
		return nil, fmt.Errorf("auth enabled but admin_password_bcrypt is empty")
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:      true,
		redis:        client,
		tokenHeader:  config.Auth.TokenHeader,
		sessionTTL:   time.Duration(config.Auth.SessionTTLMinutes) * time.Minute,
		passwordHash: config.Auth.AdminPasswordBcrypt,
	}, nil
}

func (a *Auth) Enabled() bool {
	return a.enabled
}

func (a *Auth) TokenHeader() string {
	return a.tokenHeader
}

// Redis exposes the client so sibling components (the summary cache) can
// share the connection.
func (a *Auth) Redis() *redis.Client {
	return a.redis
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func generateToken(prefix string) (string, error) {
	randomBytes := make([]byte, tokenRandBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return prefix + hex.EncodeToString(randomBytes), nil
}

func (a *Auth) currentHash(ctx context.Context) string {
	override, err := a.redis.Get(ctx, passwordKey).Result()
	if err == nil && override != "" {
		return override
	}
	if err != nil && err != redis.Nil {
		logger.Debug.Printf("Redis error reading password override, using configured hash: %v", err)
	}
	return a.passwordHash
}

// SignIn checks the password and mints a session token.
func (a *Auth) SignIn(ctx context.Context, password string) (string, error) {
	if !a.enabled {
		return "", fmt.Errorf("auth is disabled")
	}

	hash := a.currentHash(ctx)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := generateToken(sessionPrefix)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	if err := a.redis.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), a.sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// ValidateSession checks a token and slides its TTL forward.
func (a *Auth) ValidateSession(ctx context.Context, token string) error {
	if !a.enabled {
		return nil
	}
	if token == "" {
		return fmt.Errorf("missing session token")
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	if err := a.redis.Get(ctx, key).Err(); err == redis.Nil {
		return fmt.Errorf("session not found")
	} else if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	if err := a.redis.Expire(ctx, key, a.sessionTTL).Err(); err != nil {
		logger.Debug.Printf("Failed to refresh session TTL: %v", err)
	}
	return nil
}

func (a *Auth) SignOut(ctx context.Context, token string) error {
	if !a.enabled || token == "" {
		return nil
	}
	key := fmt.Sprintf(sessionKeyTpl, token)
	return a.redis.Del(ctx, key).Err()
}

// StartReset mints a short-lived reset token. Delivery of the token is out
// of band.
func (a *Auth) StartReset(ctx context.Context) (string, error) {
	if !a.enabled {
		return "", fmt.Errorf("auth is disabled")
	}

	token, err := generateToken(resetPrefix)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf(resetKeyTpl, token)
	if err := a.redis.Set(ctx, key, "1", resetTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

// CompleteReset swaps the admin password for a new one, given a valid reset
// token. The new hash lives in redis and takes precedence over the
// configured one.
func (a *Auth) CompleteReset(ctx context.Context, token, newPassword string) error {
	if !a.enabled {
		return fmt.Errorf("auth is disabled")
	}

	key := fmt.Sprintf(resetKeyTpl, token)
	if err := a.redis.Get(ctx, key).Err(); err == redis.Nil {
		return fmt.Errorf("invalid or expired reset token")
	} else if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	pipe := a.redis.Pipeline()
	pipe.Set(ctx, passwordKey, string(hash), 0)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}
	return nil
}
