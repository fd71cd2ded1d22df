package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfin/tally/internal/catalog"
	"github.com/tallyfin/tally/internal/model"
	"github.com/tallyfin/tally/internal/testutil"
)

func groupByParent(groups []catalog.Group, name string) (catalog.Group, bool) {
	for _, group := range groups {
		if group.Parent.Name == name {
			return group, true
		}
	}
	return catalog.Group{}, false
}

func TestGroupsLayout(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	groups, err := tc.Catalog.Groups(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, groups)

	// Income groups come before expense groups.
	sawExpense := false
	for _, group := range groups {
		if group.Parent.Type == model.CategoryTypeExpense {
			sawExpense = true
		}
		if group.Parent.Type == model.CategoryTypeIncome {
			assert.False(t, sawExpense, "income group %q after an expense group", group.Parent.Name)
		}
	}

	food, ok := groupByParent(groups, "Food & Drink")
	require.True(t, ok)
	require.Len(t, food.Children, 2)
	assert.Equal(t, "Groceries", food.Children[0].Name)
	assert.Equal(t, "Restaurants", food.Children[1].Name)
	assert.Equal(t, "Food & Drink", food.Children[0].ParentName)
}

func TestGroupsFilter(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	t.Run("parent match keeps all children", func(t *testing.T) {
		groups, err := tc.Catalog.Groups(ctx, "food")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Children, 2)
	})

	t.Run("child match keeps only matching children", func(t *testing.T) {
		groups, err := tc.Catalog.Groups(ctx, "groceries")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Food & Drink", groups[0].Parent.Name)
		require.Len(t, groups[0].Children, 1)
		assert.Equal(t, "Groceries", groups[0].Children[0].Name)
	})

	t.Run("no match", func(t *testing.T) {
		groups, err := tc.Catalog.Groups(ctx, "zzzz")
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("repeated term hits the memo", func(t *testing.T) {
		first, err := tc.Catalog.Groups(ctx, "transport")
		require.NoError(t, err)
		second, err := tc.Catalog.Groups(ctx, "transport")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestGroupsInvalidatedByMutation(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	groups, err := tc.Catalog.Groups(ctx, "housing")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Children)

	_, err = tc.Catalog.Add(ctx, "Rent", "🏠", "Housing", "")
	require.NoError(t, err)

	groups, err = tc.Catalog.Groups(ctx, "housing")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Children, 1)
	assert.Equal(t, "Rent", groups[0].Children[0].Name)
}

func TestGroupsReturnsCopies(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	groups, err := tc.Catalog.Groups(ctx, "")
	require.NoError(t, err)
	food, ok := groupByParent(groups, "Food & Drink")
	require.True(t, ok)
	require.NotEmpty(t, food.Children)
	food.Children[0].Name = "Mutated"

	again, err := tc.Catalog.Groups(ctx, "")
	require.NoError(t, err)
	food, ok = groupByParent(again, "Food & Drink")
	require.True(t, ok)
	assert.Equal(t, "Groceries", food.Children[0].Name)
}
