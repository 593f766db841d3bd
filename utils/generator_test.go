package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "alice:bob", PairKey("bob", "alice"))
	assert.NotEqual(t, PairKey("alice", "bob"), PairKey("alice", "carol"))
}

func TestSlugifyUsername(t *testing.T) {
	assert.Equal(t, "janedoe", SlugifyUsername("Jane Doe"))
	assert.Equal(t, "user", SlugifyUsername("!!!"))
	assert.Equal(t, "user", SlugifyUsername(""))
	assert.Equal(t, "averyveryl", SlugifyUsername("A Very Very Long Display Name"))
}
