package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenRingDropsDuplicates(t *testing.T) {
	ring := newSeenRing(3)

	assert.True(t, ring.Add("a"))
	assert.False(t, ring.Add("a"))
	assert.True(t, ring.Add("b"))
	assert.True(t, ring.Add("c"))

	// "a" is evicted once capacity wraps
	assert.True(t, ring.Add("d"))
	assert.True(t, ring.Add("a"))
	assert.False(t, ring.Add("a"))
}

func TestPayloadID(t *testing.T) {
	assert.Equal(t, "abc", payloadID([]byte(`{"id":"abc","content":"hi"}`)))
	assert.Equal(t, "", payloadID([]byte(`{"content":"hi"}`)))
	assert.Equal(t, "", payloadID([]byte(`not json`)))
}
