package reqctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Fields(ctx))
	assert.Equal(t, "", RID(ctx))
	assert.Zero(t, AccountID(ctx))

	ctx = WithAccountID(WithRID(ctx, "req-1"), 42)
	assert.Equal(t, "req-1", RID(ctx))
	assert.Equal(t, uint64(42), AccountID(ctx))
	assert.Len(t, Fields(ctx), 2)

	detached := context.WithoutCancel(ctx)
	assert.Equal(t, "req-1", RID(detached))
}
