package valkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	c := &Client{keyPrefix: normalizePrefix("poster")}

	assert.Equal(t, "poster:lock:dispatch", c.Key("lock", "dispatch"))
	assert.Equal(t, "poster", c.Key())

	bare := &Client{keyPrefix: normalizePrefix("")}
	assert.Equal(t, "cred:t1", bare.Key("cred", "t1"))
}
