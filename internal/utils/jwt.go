package utils

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PrincipalType discriminates the kind of authenticated actor.
type PrincipalType string

const (
	PrincipalCustomer PrincipalType = "customer"
	PrincipalCompany  PrincipalType = "company"
	PrincipalAdmin    PrincipalType = "admin"
)

// Valid reports whether t is one of the known principal types.
func (t PrincipalType) Valid() bool {
	switch t {
	case PrincipalCustomer, PrincipalCompany, PrincipalAdmin:
		return true
	}
	return false
}

// Principal is the authenticated actor carried by an access token.
type Principal struct {
	ID   uint          `json:"id"`
	Type PrincipalType `json:"type"`
}

const verificationSubject = "phone-verification"

type principalClaims struct {
	ID    uint          `json:"id"`
	Type  PrincipalType `json:"type"`
	Email string        `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type verificationClaims struct {
	PhoneNumber string `json:"phone_number"`
	jwt.RegisteredClaims
}

// VerifiedPhone is the payload of a decoded phone-verification token.
type VerifiedPhone struct {
	PhoneNumber string
	TokenID     string
	ExpiresAt   time.Time
}

// GenerateToken creates a signed access token for the principal.
func GenerateToken(secret string, p Principal, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &principalClaims{
		ID:    p.ID,
		Type:  p.Type,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates an access token and returns the embedded principal.
func ParseToken(secret, tokenString string) (Principal, error) {
	claims := &principalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secret), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}

	if !token.Valid || claims.ID == 0 || !claims.Type.Valid() {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}

	return Principal{ID: claims.ID, Type: claims.Type}, nil
}

// GenerateVerificationToken issues the short-lived token proving that phone
// passed SMS verification.
func GenerateVerificationToken(secret, phone string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &verificationClaims{
		PhoneNumber: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   verificationSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseVerificationToken decodes a phone-verification token. Any failure,
// including an empty or foreign token, is reported as ok == false.
func ParseVerificationToken(secret, tokenString string) (VerifiedPhone, bool) {
	if tokenString == "" {
		return VerifiedPhone{}, false
	}

	claims := &verificationClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secret), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return VerifiedPhone{}, false
	}

	if claims.Subject != verificationSubject || claims.PhoneNumber == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return VerifiedPhone{}, false
	}

	return VerifiedPhone{
		PhoneNumber: claims.PhoneNumber,
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, true
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}
}
