package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "weavebooks/internal/core/context"
)

func TestNewScope(t *testing.T) {
	_, err := NewScope("  ")
	assert.ErrorIs(t, err, ErrEmptyAccount)

	s, err := NewScope("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", s.ID())
	assert.False(t, s.IsZero())
}

func TestFromContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoAccountInScope)

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u1", AccountID: "acc-user"})
	s, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc-user", s.ID())

	ctx = WithScope(ctx, MustScope("acc-job"))
	s, err = FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc-job", s.ID())
}
