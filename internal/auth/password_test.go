package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret-passw0rd", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hashed, "s3cret-passw0rd"))
	assert.Error(t, ComparePassword(hashed, "wrong"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	hashed, err := HashPassword("s3cret-passw0rd", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
