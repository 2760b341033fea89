package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+15550001234"))
	assert.True(t, ValidatePhone("(555) 000-1234"))
	assert.True(t, ValidatePhone("5550001234"))

	assert.False(t, ValidatePhone(""))
	assert.False(t, ValidatePhone("+0123"))
	assert.False(t, ValidatePhone("not-a-number"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+15550001234", NormalizePhone("+1 (555) 000-1234"))
	assert.Equal(t, "5550001234", NormalizePhone("555 000 1234"))
}
