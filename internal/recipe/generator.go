// Package recipe recommends dishes from a user's fridge contents via
// an OpenAI-compatible chat gateway, with ranked static recipes as the
// degraded path.
package recipe

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

// Recipe is one recommended dish.
type Recipe struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Ingredients        string `json:"ingredients"`
	Instructions       string `json:"instructions"`
	CookingTime        string `json:"cookingTime"`
	Difficulty         string `json:"difficulty"`
	MatchedIngredients int    `json:"matchedIngredients,omitempty"`
}

// Config holds recipe generator configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Generator produces recipe recommendations. Provider failure or an
// empty parse degrades to the static fallback set; Recommend never
// fails.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewGenerator creates a generator. An empty API key selects the
// fallback recipes permanently.
func NewGenerator(cfg Config, logger *zap.Logger) *Generator {
	g := &Generator{
		model:  cfg.Model,
		logger: logger,
	}
	if cfg.APIKey == "" {
		logger.Warn("Recipe gateway API key missing, recommendations use fallback recipes")
		return g
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	g.client = openai.NewClientWithConfig(clientCfg)
	return g
}

const recipeSystemPrompt = "당신은 요리 전문가입니다. 주어진 재료를 활용하여 맛있고 실용적인 레시피를 추천해주세요."

const recipePromptTemplate = `다음 재료들로 만들 수 있는 맛있는 요리 레시피 3가지를 추천해주세요:
재료: %s

각 레시피마다 다음 형식으로 답변해주세요:
1. 요리명: [요리 이름]
   재료: [필요한 재료들]
   조리법: [간단한 조리 순서]
   예상 조리시간: [시간]
   난이도: [쉬움/보통/어려움]

실제로 만들 수 있는 현실적인 레시피로 추천해주세요.`

// Recommend returns up to three recipes for the given ingredients.
func (g *Generator) Recommend(ctx context.Context, ingredients []models.Food) []Recipe {
	if g.client == nil {
		return FallbackRecipes(ingredients)
	}

	parts := make([]string, 0, len(ingredients))
	for _, item := range ingredients {
		parts = append(parts, fmt.Sprintf("%s %d%s", item.Name, item.Quantity, item.Unit))
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.5,
		MaxTokens:   1000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recipeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(recipePromptTemplate, strings.Join(parts, ", "))},
		},
	})
	if err != nil {
		g.logger.Error("Recipe gateway call failed, using fallback recipes", zap.Error(err))
		return FallbackRecipes(ingredients)
	}

	if len(resp.Choices) == 0 {
		g.logger.Warn("Recipe gateway returned no choices, using fallback recipes")
		return FallbackRecipes(ingredients)
	}

	recipes := ParseRecipes(resp.Choices[0].Message.Content)
	if len(recipes) == 0 {
		g.logger.Warn("No recipes parsed from model output, using fallback recipes")
		return FallbackRecipes(ingredients)
	}

	g.logger.Info("Recipes recommended", zap.Int("count", len(recipes)))
	return recipes
}
