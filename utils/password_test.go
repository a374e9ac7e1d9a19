package utils

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NilError(t, err)
	assert.Assert(t, hash != "secret123")
	assert.Assert(t, CheckPassword(hash, "secret123"))
	assert.Assert(t, !CheckPassword(hash, "wrong"))
}

func TestPasswordHashSalted(t *testing.T) {
	a, err := HashPassword("secret123")
	assert.NilError(t, err)
	b, err := HashPassword("secret123")
	assert.NilError(t, err)
	assert.Assert(t, a != b)
}
