package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTiered(t *testing.T) {
	t.Run("valid strict json", func(t *testing.T) {
		res, ok := decodeTiered(`{"title":"Big Week","teaser":"Short.","long":"Much longer text."}`, "a@x.com")
		require.True(t, ok)
		assert.Equal(t, "Big Week", res.Title)
		assert.Equal(t, "Short.", res.Teaser)
		assert.Equal(t, "Much longer text.", res.Long)
	})

	t.Run("missing title falls back to sender", func(t *testing.T) {
		res, ok := decodeTiered(`{"teaser":"Short.","long":"Long."}`, "a@x.com")
		require.True(t, ok)
		assert.Equal(t, "a@x.com", res.Title)
	})

	t.Run("not json", func(t *testing.T) {
		_, ok := decodeTiered("Sure! Here is your summary:", "a@x.com")
		assert.False(t, ok)
	})

	t.Run("json but both tiers empty", func(t *testing.T) {
		_, ok := decodeTiered(`{"title":"Only a title"}`, "a@x.com")
		assert.False(t, ok)
	})

	t.Run("wrong value types tolerated", func(t *testing.T) {
		res, ok := decodeTiered(`{"title":42,"teaser":"Short.","long":"Long."}`, "a@x.com")
		require.True(t, ok)
		assert.Equal(t, "a@x.com", res.Title)
	})

	t.Run("highlights capped at four", func(t *testing.T) {
		res, ok := decodeTiered(`{"teaser":"T.","long":"L.","highlights":["a","b","c","d","e","f"]}`, "a@x.com")
		require.True(t, ok)
		assert.Len(t, res.Highlights, 4)
	})
}

func TestNewOpenAIServiceRequiresKey(t *testing.T) {
	_, err := NewOpenAIService(Config{})
	assert.Error(t, err)

	svc, err := NewOpenAIService(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestHeadRunes(t *testing.T) {
	assert.Equal(t, "abc", headRunes("abc", 10))
	assert.Equal(t, "ab", headRunes("abcdef", 2))
	assert.Equal(t, "çğ", headRunes("çğü", 2))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "x", orDefault("x", "d"))
	assert.Equal(t, "d", orDefault("", "d"))
	assert.Equal(t, "d", orDefault("   ", "d"))
}
