package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashUUID_Deterministic(t *testing.T) {
	type key struct {
		Slope     float64
		Intercept float64
	}
	a := HashUUID(key{Slope: 1, Intercept: -1024})
	b := HashUUID(key{Slope: 1, Intercept: -1024})
	c := HashUUID(key{Slope: 2, Intercept: -1024})

	assert.Equal(t, a, b, "structurally equal values hash identically")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 36, "uuid formatted")
}
