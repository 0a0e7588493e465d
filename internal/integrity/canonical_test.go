package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsKeys(t *testing.T) {
	b, err := canonicalJSON(map[string]any{
		"zeta":  1,
		"alpha": 2,
		"mid":   map[string]any{"b": 1, "a": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":{"a":2,"b":1},"zeta":1}`, string(b))
}

func TestCanonicalJSON_Deterministic(t *testing.T) {
	payload := map[string]any{"x": 1.5, "y": "text", "z": []string{"a", "b"}}

	first, err := canonicalJSON(payload)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := canonicalJSON(payload)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCanonicalJSON_UnserializableValue(t *testing.T) {
	_, err := canonicalJSON(map[string]any{"bad": func() {}})
	assert.Error(t, err)
}

func TestHashHex(t *testing.T) {
	sum := sha256.Sum256([]byte("hello"))
	assert.Equal(t, hex.EncodeToString(sum[:]), hashHex([]byte("hello")))
	assert.Len(t, hashHex(nil), 64)
}

func TestChainedHash_FiveRounds(t *testing.T) {
	payload := []byte("chain me")

	want := hashHex(payload)
	for i := 0; i < 4; i++ {
		want = hashHex([]byte(want))
	}

	assert.Equal(t, want, chainedHash(payload))
	assert.NotEqual(t, hashHex(payload), chainedHash(payload))
}

func TestChainedHash_OrderSensitive(t *testing.T) {
	a := chainedHash([]byte(`{"a":1,"b":2}`))
	b := chainedHash([]byte(`{"b":2,"a":1}`))
	assert.NotEqual(t, a, b)
}
