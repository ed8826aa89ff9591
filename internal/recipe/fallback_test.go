package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

func TestFallbackRecipes_RanksByMatchedIngredients(t *testing.T) {
	// 계란 appears in 볶음밥 and 계란찜; 물 and 소금 only in 계란찜.
	ingredients := []models.Food{
		{Name: "계란", Quantity: 10},
		{Name: "물", Quantity: 1},
		{Name: "소금", Quantity: 1},
	}

	recipes := FallbackRecipes(ingredients)

	require.Len(t, recipes, 3)
	assert.Equal(t, "계란찜", recipes[0].Name)
	assert.Equal(t, 3, recipes[0].MatchedIngredients)
	assert.GreaterOrEqual(t, recipes[0].MatchedIngredients, recipes[1].MatchedIngredients)
	assert.GreaterOrEqual(t, recipes[1].MatchedIngredients, recipes[2].MatchedIngredients)
}

func TestFallbackRecipes_EmptyFridgeKeepsBaseOrder(t *testing.T) {
	recipes := FallbackRecipes(nil)

	require.Len(t, recipes, 3)
	assert.Equal(t, "간단한 볶음밥", recipes[0].Name)
	assert.Equal(t, "계란찜", recipes[1].Name)
	assert.Equal(t, "샐러드", recipes[2].Name)
}

func TestFallbackRecipes_DoesNotMutateBaseRecipes(t *testing.T) {
	FallbackRecipes([]models.Food{{Name: "계란"}})

	assert.Zero(t, baseRecipes[0].MatchedIngredients, "ranking must work on a copy")
	assert.Equal(t, "간단한 볶음밥", baseRecipes[0].Name)
}

func TestRecommend_NoAPIKeyUsesFallback(t *testing.T) {
	g := NewGenerator(Config{}, zap.NewNop())

	recipes := g.Recommend(context.Background(), []models.Food{
		{Name: "계란", Quantity: 2},
		{Name: "물", Quantity: 1},
	})

	require.Len(t, recipes, 3)
	assert.Equal(t, "계란찜", recipes[0].Name, "fallback recipes are ranked by the fridge contents")
}
