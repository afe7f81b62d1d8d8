// Package handshake authenticates a device connecting over the fiber
// transport and mints the short-lived session token of SPEC_FULL.md §3.9:
// a Go-native analog to Parsec's Noise-based channel handshake, since raw
// wire framing is explicitly out of scope (spec.md §1).
package handshake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
	"github.com/seu-repo/parsec-backend/internal/service/trustchain"
)

// Claims is the session token's payload: which organization and device it
// was minted for, plus the exp and iat registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Org    string `json:"org"`
	Device string `json:"device"`
}

// challengeWire is what the device signs with its own VerifyKey-matching
// signing key to prove possession of it, mirroring the
// type/timestamp/device_id shape of trustchain's certificate payloads.
type challengeWire struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
}

const challengeType = "session_handshake"

// Service verifies a device's self-signed handshake payload against its
// registered VerifyKey and, on success, issues a signed session token the
// fiber transport accepts as a Bearer credential on every subsequent
// request (SPEC_FULL.md §3.9).
type Service struct {
	driver   ports.Driver
	secret   []byte
	ttl      time.Duration
	ballpark time.Duration
	log      *zap.Logger
}

func NewService(driver ports.Driver, secret string, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{
		driver:   driver,
		secret:   []byte(secret),
		ttl:      ttl,
		ballpark: trustchain.MaxTSBallpark,
		log:      log,
	}
}

// BuildChallenge returns the exact bytes a device must sign (with its own
// signing key, over a nacl/sign envelope) to complete the handshake.
func BuildChallenge(deviceID domain.DeviceID, now time.Time) ([]byte, error) {
	return json.Marshal(challengeWire{Type: challengeType, Timestamp: now, DeviceID: string(deviceID)})
}

// Authenticate verifies that signed is a valid nacl/sign envelope over a
// challengeWire naming deviceID, produced within the ballpark of now, and
// that the device is known and not yet revoked. On success it returns a
// signed session token.
func (s *Service) Authenticate(ctx context.Context, org domain.OrganizationID, deviceID domain.DeviceID, now time.Time, signed []byte) (string, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	dev, err := tx.Devices().Get(ctx, org, deviceID)
	if err != nil {
		return "", err
	}
	if dev.Revoked(now) {
		return "", domain.ErrNotAllowed
	}

	raw, err := trustchain.OpenWithVerifyKey(dev.VerifyKey, signed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidCertification, err)
	}
	var w challengeWire
	if err := json.Unmarshal(raw, &w); err != nil || w.Type != challengeType || w.DeviceID != string(deviceID) {
		return "", fmt.Errorf("%w: malformed handshake payload", domain.ErrInvalidData)
	}
	if d := now.Sub(w.Timestamp); d > s.ballpark || d < -s.ballpark {
		return "", domain.ErrBadTimestamp
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Org:    string(org),
		Device: string(deviceID),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		s.log.Error("failed to sign session token", zap.String("device", string(deviceID)), zap.Error(err))
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signedToken, nil
}

// ValidateToken parses and validates a session token minted by Authenticate.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}
	return claims, nil
}
