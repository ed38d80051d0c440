package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("sup3r-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3r-secret", hash)

	assert.True(t, CheckPassword("sup3r-secret", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("sup3r-secret", "not-a-hash"))
}

func TestGenerateInviteCodeLengthAndAlphabet(t *testing.T) {
	code, err := GenerateInviteCode()
	require.NoError(t, err)
	assert.Len(t, code, InviteCodeLength)

	for _, c := range code {
		assert.True(t, strings.ContainsRune(inviteCodeAlphabet, c),
			"unexpected character %q in code %q", c, code)
	}
}

func TestGenerateInviteCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "collision after %d codes: %q", i, code)
		seen[code] = true
	}
}

func TestGenerateCodeCustomLength(t *testing.T) {
	code, err := GenerateCode(32)
	require.NoError(t, err)
	assert.Len(t, code, 32)
}
