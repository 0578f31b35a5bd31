package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepo_SeededList(t *testing.T) {
	repo := NewSQLiteCategoryRepo(testutil.NewTestDB(t))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, len(domain.DefaultCategories()))
	assert.Equal(t, domain.CategoryUncategorized, list[0].Name)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, domain.UncategorizedID, list[0].ID)
	for _, c := range list[1:] {
		assert.False(t, c.IsDefault, c.Name)
	}
}

func TestCategoryRepo_CreateGetUpdate(t *testing.T) {
	repo := NewSQLiteCategoryRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	cat := testutil.NewTestCategory("Reading")
	require.NoError(t, repo.Create(ctx, cat))

	byName, err := repo.GetByName(ctx, "Reading")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, byName.ID)

	cat.Color = "#000000"
	cat.Name = "Books"
	require.NoError(t, repo.Update(ctx, cat))

	fetched, err := repo.GetByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", fetched.Name)
	assert.Equal(t, "#000000", fetched.Color)
}

func TestCategoryRepo_DuplicateName(t *testing.T) {
	repo := NewSQLiteCategoryRepo(testutil.NewTestDB(t))
	err := repo.Create(context.Background(), testutil.NewTestCategory(domain.CategoryWork))
	assert.Error(t, err)
}

func TestCategoryRepo_UpdateMissing(t *testing.T) {
	repo := NewSQLiteCategoryRepo(testutil.NewTestDB(t))
	err := repo.Update(context.Background(), testutil.NewTestCategory("Nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryRepo_DeleteDefaultRefused(t *testing.T) {
	repo := NewSQLiteCategoryRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	err := repo.Delete(ctx, domain.UncategorizedID)
	assert.ErrorIs(t, err, ErrDefaultCategory)

	_, err = repo.GetByID(ctx, domain.UncategorizedID)
	assert.NoError(t, err)
}

func TestCategoryRepo_DeleteMissing(t *testing.T) {
	repo := NewSQLiteCategoryRepo(testutil.NewTestDB(t))
	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryRepo_Stats(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	catRepo := NewSQLiteCategoryRepo(db)
	appRepo := NewSQLiteApplicationRepo(db)

	dev, err := catRepo.GetByName(ctx, domain.CategoryDevelopment)
	require.NoError(t, err)

	require.NoError(t, appRepo.Create(ctx, testutil.NewTestApplication("Code",
		testutil.WithCategoryID(dev.ID), testutil.WithAppTime(90*time.Second))))
	require.NoError(t, appRepo.Create(ctx, testutil.NewTestApplication("Terminal",
		testutil.WithCategoryID(dev.ID), testutil.WithAppTime(30*time.Second))))

	stats, err := catRepo.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, len(domain.DefaultCategories()))

	byName := map[string]domain.CategoryStat{}
	for _, s := range stats {
		byName[s.Category.Name] = s
	}
	assert.Equal(t, 2, byName[domain.CategoryDevelopment].AppCount)
	assert.Equal(t, 2*time.Minute, byName[domain.CategoryDevelopment].TotalTime)
	assert.Equal(t, 0, byName[domain.CategoryWork].AppCount)
	assert.Zero(t, byName[domain.CategoryWork].TotalTime)
}
