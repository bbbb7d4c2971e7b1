package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Unix(1900000000, 0)
	token := signToken(t, &Claims{
		Email: "ana@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "8b1c-user",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "8b1c-user", claims.UserID())
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "authenticated", claims.Role)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())

	_, err = DecodeClaims("")
	assert.Error(t, err)

	_, err = DecodeClaims("not-a-token")
	assert.Error(t, err)
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{
			name:  "empty token",
			token: "",
			want:  true,
		},
		{
			name:  "garbage",
			token: "abc.def.ghi",
			want:  true,
		},
		{
			name:  "no exp claim",
			token: signToken(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}),
			want:  true,
		},
		{
			name:  "expired",
			token: signToken(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second))}}),
			want:  true,
		},
		{
			name:  "expires exactly now",
			token: signToken(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)}}),
			want:  false,
		},
		{
			name:  "valid",
			token: signToken(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpired(tt.token, now))
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "lowercase scheme", header: "bearer abc.def", want: "abc.def"},
		{name: "empty", header: "", wantErr: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "no token", header: "Bearer   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
