package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeForLog(t *testing.T) {
	assert.Equal(t, "", SanitizeForLog(""))
	assert.Equal(t, "a b", SanitizeForLog("a\r\nb"))
	assert.Equal(t, "a b c", SanitizeForLog("a\nb\x00c"))
	assert.Equal(t, "plain", SanitizeForLog("plain"))
}
