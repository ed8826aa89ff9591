package recipe

import (
	"sort"
	"strings"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

// baseRecipes are served when the chat gateway is unavailable.
var baseRecipes = []Recipe{
	{
		ID:           1,
		Name:         "간단한 볶음밥",
		Ingredients:  "밥, 계란, 채소, 조미료",
		Instructions: "1. 팬에 기름을 두르고 계란을 볶는다\n2. 밥과 채소를 넣고 볶는다\n3. 조미료로 간을 맞춘다",
		CookingTime:  "15분",
		Difficulty:   "쉬움",
	},
	{
		ID:           2,
		Name:         "계란찜",
		Ingredients:  "계란, 물, 소금",
		Instructions: "1. 계란을 풀어 체에 거른다\n2. 물과 소금을 넣고 섞는다\n3. 전자레인지에 3-4분 돌린다",
		CookingTime:  "10분",
		Difficulty:   "쉬움",
	},
	{
		ID:           3,
		Name:         "샐러드",
		Ingredients:  "채소, 드레싱",
		Instructions: "1. 채소를 깨끗이 씻는다\n2. 적당한 크기로 자른다\n3. 드레싱과 함께 섞는다",
		CookingTime:  "5분",
		Difficulty:   "쉬움",
	},
}

// FallbackRecipes returns the static recipes, ranked by how many of
// the available ingredients each one mentions.
func FallbackRecipes(ingredients []models.Food) []Recipe {
	recipes := make([]Recipe, len(baseRecipes))
	copy(recipes, baseRecipes)

	if len(ingredients) == 0 {
		return recipes
	}

	available := make([]string, 0, len(ingredients))
	for _, item := range ingredients {
		available = append(available, strings.ToLower(item.Name))
	}

	for i := range recipes {
		lowerIngredients := strings.ToLower(recipes[i].Ingredients)
		matched := 0
		for _, name := range available {
			if name != "" && strings.Contains(lowerIngredients, name) {
				matched++
			}
		}
		recipes[i].MatchedIngredients = matched
	}

	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].MatchedIngredients > recipes[j].MatchedIngredients
	})

	return recipes
}
