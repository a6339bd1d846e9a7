// Package token issues and verifies the signed tokens used for sessions and
// email confirmation.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/festy23/ctf_platform/internal/auth/model"
)

// Token purposes. A token is only accepted for the purpose it was issued for.
const (
	PurposeSession      = "session"
	PurposeConfirmation = "email-confirmation"
)

// ErrInvalid is returned for malformed, forged, expired or misused tokens.
var ErrInvalid = errors.New("invalid token")

// Claims is the payload of every token.
type Claims struct {
	Purpose string     `json:"purpose"`
	Role    model.Role `json:"role,omitempty"`
	Email   string     `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs tokens with an HMAC secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer creates an issuer for secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// IssueSession returns a token naming p's session. The token is only valid
// while the session it names is alive in the session store.
func (i *Issuer) IssueSession(p model.Principal, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(ttl)
	claims := Claims{
		Purpose: PurposeSession,
		Role:    p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.SessionID,
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := i.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseSession verifies a session token and returns the principal it names.
func (i *Issuer) ParseSession(raw string) (model.Principal, error) {
	claims, err := i.parse(raw, PurposeSession)
	if err != nil {
		return model.Principal{}, err
	}
	if !claims.Role.Valid() || claims.ID == "" {
		return model.Principal{}, ErrInvalid
	}

	id, err := subjectID(claims.Subject)
	if err != nil {
		return model.Principal{}, err
	}
	return model.Principal{Role: claims.Role, ID: id, SessionID: claims.ID}, nil
}

// IssueConfirmation returns a token confirming email for userID.
func (i *Issuer) IssueConfirmation(userID uint, email string, ttl time.Duration) (string, error) {
	now := i.now()
	return i.sign(Claims{
		Purpose: PurposeConfirmation,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}

// ParseConfirmation verifies a confirmation token.
func (i *Issuer) ParseConfirmation(raw string) (uint, string, error) {
	claims, err := i.parse(raw, PurposeConfirmation)
	if err != nil {
		return 0, "", err
	}

	id, err := subjectID(claims.Subject)
	if err != nil {
		return 0, "", err
	}
	return id, claims.Email, nil
}

func (i *Issuer) sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) parse(raw, purpose string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalid
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalid
	}
	return claims, nil
}

func subjectID(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalid
	}
	return uint(id), nil
}
