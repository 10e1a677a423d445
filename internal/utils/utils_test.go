package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidators(t *testing.T) {
	assert.True(t, IsEmail("kim@example.com"))
	assert.False(t, IsEmail("kim@"))
	assert.False(t, IsEmail(""))

	assert.True(t, IsPhone("010-1234-5678"))
	assert.True(t, IsPhone("01012345678"))
	assert.True(t, IsPhone("0111234567"))
	assert.False(t, IsPhone("12312341234"))
	assert.False(t, IsPhone("010-12-5678"))
	assert.False(t, IsPhone(""))

	assert.True(t, IsPassword("password1"))
	assert.False(t, IsPassword("short1"))
	assert.False(t, IsPassword("onlyletters"))
	assert.False(t, IsPassword("12345678"))
	assert.False(t, IsPassword("pass word1"))

	assert.Equal(t, "01012345678", NormalizePhone(" 010-1234-5678 "))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)
	assert.True(t, CheckPassword(hash, "password1"))
	assert.False(t, CheckPassword(hash, "password2"))

	again, err := HashPassword("password1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", Principal{ID: 7, Type: PrincipalCompany}, "seller@example.com", time.Hour)
	require.NoError(t, err)

	principal, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: 7, Type: PrincipalCompany}, principal)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", Principal{ID: 7, Type: PrincipalCompany}, "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	unknown, err := GenerateToken("secret", Principal{ID: 7, Type: "robot"}, "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("secret", unknown)
	assert.Error(t, err)
}

func TestVerificationToken(t *testing.T) {
	token, err := GenerateVerificationToken("secret", "01012345678", time.Minute)
	require.NoError(t, err)

	verified, ok := ParseVerificationToken("secret", token)
	require.True(t, ok)
	assert.Equal(t, "01012345678", verified.PhoneNumber)
	assert.NotEmpty(t, verified.TokenID)
	assert.True(t, verified.ExpiresAt.After(time.Now()))

	_, ok = ParseVerificationToken("secret", "")
	assert.False(t, ok)
	_, ok = ParseVerificationToken("secret", "not.a.token")
	assert.False(t, ok)
	_, ok = ParseVerificationToken("wrong", token)
	assert.False(t, ok)

	access, err := GenerateToken("secret", Principal{ID: 1, Type: PrincipalCustomer}, "", time.Hour)
	require.NoError(t, err)
	_, ok = ParseVerificationToken("secret", access)
	assert.False(t, ok)

	expired, err := GenerateVerificationToken("secret", "01012345678", -time.Second)
	require.NoError(t, err)
	_, ok = ParseVerificationToken("secret", expired)
	assert.False(t, ok)
}

func TestValidateStruct(t *testing.T) {
	type signup struct {
		Email    string `validate:"required,email"`
		Phone    string `validate:"required,phone"`
		Password string `validate:"required,password"`
	}

	assert.NoError(t, ValidateStruct(signup{Email: "kim@example.com", Phone: "01012345678", Password: "password1"}))
	assert.Error(t, ValidateStruct(signup{Email: "kim@example.com", Phone: "1234", Password: "password1"}))
	assert.Error(t, ValidateStruct(signup{Email: "kim@example.com", Phone: "01012345678", Password: "password"}))
}
