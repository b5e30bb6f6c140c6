package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStampsDocType(t *testing.T) {
	a := New("asset9", "pink", 3, "Ana", 10)
	assert.Equal(t, DocType, a.DocType)
	assert.Equal(t, "asset9", a.ID)
	assert.Equal(t, 3, a.Size)
	assert.Equal(t, 10, a.AppraisedValue)
}

func TestSeed(t *testing.T) {
	seed := Seed()
	if assert.Len(t, seed, 6) {
		assert.Equal(t, New("asset3", "green", 10, "Jin Soo", 500), seed[2])
		assert.Equal(t, New("asset6", "white", 15, "Michel", 800), seed[5])
	}
	for _, a := range seed {
		assert.Equal(t, DocType, a.DocType, a.ID)
	}
}
