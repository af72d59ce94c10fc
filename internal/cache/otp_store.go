package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPNotFound = errors.New("otp not found or expired")
	ErrOTPMismatch = errors.New("otp does not match")
)

// OTPStore keeps one-time passcodes and password-reset tokens in Redis with a
// TTL. Entries are single-use: a successful verification consumes the entry,
// so a second verification with the same code fails.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string   { return "otp:" + email }
func resetKey(token string) string { return "pwreset:" + token }

// SaveOTP stores a passcode for the email, replacing any outstanding one.
func (s *OTPStore) SaveOTP(ctx context.Context, email, code string) error {
	if s.client == nil {
		return ErrCacheNotAvailable
	}
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("otp save failed: %w", err)
	}
	return nil
}

// VerifyOTP checks the passcode and consumes it on success.
func (s *OTPStore) VerifyOTP(ctx context.Context, email, code string) error {
	if s.client == nil {
		return ErrCacheNotAvailable
	}

	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrOTPNotFound
		}
		return fmt.Errorf("otp get failed: %w", err)
	}

	if stored != code {
		return ErrOTPMismatch
	}

	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("otp delete failed: %w", err)
	}
	return nil
}

// SaveResetToken stores a password-reset token mapped to the account email.
func (s *OTPStore) SaveResetToken(ctx context.Context, token, email string, ttl time.Duration) error {
	if s.client == nil {
		return ErrCacheNotAvailable
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	if err := s.client.Set(ctx, resetKey(token), email, ttl).Err(); err != nil {
		return fmt.Errorf("reset token save failed: %w", err)
	}
	return nil
}

// ConsumeResetToken resolves a reset token to its email and invalidates it.
func (s *OTPStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	if s.client == nil {
		return "", ErrCacheNotAvailable
	}

	email, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrOTPNotFound
		}
		return "", fmt.Errorf("reset token get failed: %w", err)
	}
	return email, nil
}
