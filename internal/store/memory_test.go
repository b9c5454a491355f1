package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/game"
)

func TestMemorySaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := game.New(game.Setup{Human: cards.Hand{Numbers: []int{1}}, Target: 1})

	_, err := s.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, r))
	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestMemoryPrune(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	old := game.New(game.Setup{Target: 1})
	old.Started = time.Now().Add(-2 * time.Hour)
	fresh := game.New(game.Setup{Target: 2})
	require.NoError(t, s.Save(ctx, old))
	require.NoError(t, s.Save(ctx, fresh))

	assert.Equal(t, 1, s.Prune(ctx, time.Now().Add(-time.Hour)))
	_, err := s.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}
