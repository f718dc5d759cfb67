package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	t.Run("empty context carries no tx", func(t *testing.T) {
		_, ok := From(context.Background())
		assert.False(t, ok)
	})

	t.Run("nil tx leaves context untouched", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, WithTx(ctx, nil))
	})

	t.Run("stored tx is returned", func(t *testing.T) {
		sqlTx := &sql.Tx{}
		got, ok := From(WithTx(context.Background(), sqlTx))
		assert.True(t, ok)
		assert.Same(t, sqlTx, got)
	})
}

func TestRun_ReusesOuterTx(t *testing.T) {
	outer := &sql.Tx{}
	ctx := WithTx(context.Background(), outer)

	called := false
	err := Run(ctx, nil, func(ctx context.Context) error {
		called = true
		got, ok := From(ctx)
		assert.True(t, ok)
		assert.Same(t, outer, got)
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}
