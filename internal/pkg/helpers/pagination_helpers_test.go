package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, uint64(50), ClampLimit(0, 50, 500))
	assert.Equal(t, uint64(20), ClampLimit(20, 50, 500))
	assert.Equal(t, uint64(500), ClampLimit(10000, 50, 500))
	assert.Equal(t, uint64(DefaultPageSize), ClampLimit(0, 0, 0))
	assert.Equal(t, uint64(10), ClampLimit(0, 50, 10), "default never exceeds max")
}
