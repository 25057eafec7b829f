package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, L, FromContext(ctx), "empty context falls back to the global logger")

	scoped := L.With("userID", int64(7))
	ctx = WithContext(ctx, scoped)
	assert.Same(t, scoped, FromContext(ctx))
}
