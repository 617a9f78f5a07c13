package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("POS_TEST_STR", "x")
	t.Setenv("POS_TEST_INT", "12")
	t.Setenv("POS_TEST_BAD_INT", "twelve")
	t.Setenv("POS_TEST_BOOL", "true")
	t.Setenv("POS_TEST_BLANK", "  ")

	assert.Equal(t, "x", EnvDefault("POS_TEST_STR", "d"))
	assert.Equal(t, "d", EnvDefault("POS_TEST_UNSET", "d"))
	assert.Equal(t, "d", EnvDefault("POS_TEST_BLANK", "d"))
	assert.Equal(t, 12, EnvIntDefault("POS_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("POS_TEST_BAD_INT", 1))
	assert.True(t, EnvBoolDefault("POS_TEST_BOOL", false))
	assert.True(t, EnvBoolDefault("POS_TEST_UNSET", true))
}

func TestRequire(t *testing.T) {
	assert.NoError(t, NonEmpty("v", "X"))
	assert.EqualError(t, NonEmpty("", "X"), "missing required env X")
	assert.NoError(t, OneOf("b", "X", "a", "b"))
	assert.Error(t, OneOf("c", "X", "a", "b"))
}
