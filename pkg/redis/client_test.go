package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyKeyShape(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "swiftpos:idempotency:checkout:abc-123", c.IdempotencyKey("checkout", "abc-123"))
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	assert.Equal(t, "swiftpos:idempotency:x", buildKey(idempotencyPrefix, "", "x"))
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client

	assert.NoError(t, c.Close())

	_, err := c.SetNX(context.Background(), "k", "v", time.Minute)
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}
