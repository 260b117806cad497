package cache_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caremate/caremate/internal/cache"
)

func TestKey_NormalizesWhitespaceAndCase(t *testing.T) {
	a := cache.Key("What causes   a headache?")
	b := cache.Key("  what CAUSES a headache?  ")

	assert.Equal(t, a, b)
}

func TestKey_DistinctMessagesDistinctKeys(t *testing.T) {
	a := cache.Key("what causes a headache?")
	b := cache.Key("what causes a fever?")

	assert.NotEqual(t, a, b)
}

func TestKey_NeverExposesMessageContent(t *testing.T) {
	key := cache.Key("I take lisinopril for blood pressure")

	assert.True(t, strings.HasPrefix(key, "caremate:resp:"))
	assert.NotContains(t, key, "lisinopril")
}
