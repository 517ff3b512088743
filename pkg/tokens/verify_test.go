package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewVerifyManager("token-secret", time.Hour)

	tok, err := m.Generate("user-42")
	require.NoError(t, err)

	uid, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", uid)
}

func TestParseExpired(t *testing.T) {
	m := NewVerifyManager("token-secret", -time.Minute)

	tok, err := m.Generate("user-42")
	require.NoError(t, err)

	_, err = m.Parse(tok)
	assert.Error(t, err)
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewVerifyManager("right-secret", time.Hour)
	verifier := NewVerifyManager("wrong-secret", time.Hour)

	tok, err := issuer.Generate("user-42")
	require.NoError(t, err)

	_, err = verifier.Parse(tok)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	m := NewVerifyManager("token-secret", time.Hour)

	_, err := m.Parse("definitely-not-a-token")
	assert.Error(t, err)
}
