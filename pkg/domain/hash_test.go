package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	t.Run("json uses hex", func(t *testing.T) {
		raw, err := json.Marshal(struct {
			H Hash `json:"h"`
		}{H: Hash("ab")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"h":"6162"}`, string(raw))

		var out struct {
			H Hash `json:"h"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.True(t, out.H.Equal(Hash("ab")))
	})

	t.Run("rejects non-hex", func(t *testing.T) {
		var out struct {
			H Hash `json:"h"`
		}
		require.Error(t, json.Unmarshal([]byte(`{"h":"zz"}`), &out))
	})

	t.Run("empty string decodes to empty hash", func(t *testing.T) {
		var out struct {
			H Hash `json:"h"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"h":""}`), &out))
		assert.True(t, out.H.IsEmpty())
	})

	t.Run("clone does not alias", func(t *testing.T) {
		h := Hash("abc")
		c := h.Clone()
		c[0] = 'z'
		assert.Equal(t, Hash("abc"), h)
	})
}
