package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomID(t *testing.T) {
	id := GenerateRandomID(16)
	assert.Len(t, id, 16)
	assert.NotEqual(t, id, GenerateRandomID(16))

	assert.Len(t, GenerateRandomID(7), 7)
}

func TestMD5Hash(t *testing.T) {
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", MD5Hash("hello"))
}

func TestValidateRequestID(t *testing.T) {
	assert.True(t, ValidateRequestID("abc-123_XYZ"))
	assert.False(t, ValidateRequestID(""))
	assert.False(t, ValidateRequestID("has space"))
	assert.False(t, ValidateRequestID("line\nbreak"))
}
