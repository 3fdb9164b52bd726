package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundtrip(t *testing.T) {
	key := []byte("test-key")

	token, err := GenerateJWT("alice", []string{"execute"}, time.Hour, key)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, key)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, []string{"execute"}, claims.Scopes)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := GenerateJWT("alice", nil, time.Hour, []byte("right-key"))
	require.NoError(t, err)

	_, err = ValidateJWT(token, []byte("wrong-key"))
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	key := []byte("test-key")
	token, err := GenerateJWT("alice", nil, -time.Minute, key)
	require.NoError(t, err)

	_, err = ValidateJWT(token, key)
	require.Error(t, err)
}
