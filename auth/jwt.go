// Package auth issues and verifies the bearer tokens that identify
// callers of the execution API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type CtxKey string

// CtxJwtClaimsKey holds the *JwtClaims of the authenticated caller,
// or a typed nil when the request carried no token.
const CtxJwtClaimsKey CtxKey = "jwt_claims"

type JwtClaims struct {
	Username string   `json:"username"`
	Scopes   []string `json:"scopes"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a token identifying username with the given
// scopes, valid for ttl.
func GenerateJWT(username string, scopes []string, ttl time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := JwtClaims{
		Username: username,
		Scopes:   scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func ValidateJWT(tokenStr string, key []byte) (*JwtClaims, error) {
	claims := &JwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return key, nil
		})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("token has no username claim")
	}
	return claims, nil
}
