package repository

import (
	"context"
	"errors"
	"testing"

	"acervo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommunityRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	first := testutil.CreateCommunity(t, db, "Engenharia")
	second := testutil.CreateCommunity(t, db, "Biologia")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engenharia", got.Name)

	_, err = repo.GetByID(ctx, 404)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
