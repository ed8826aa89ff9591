// Package classifier decides which receipt items are food, using the
// CLOVA Studio chat endpoint with a rule-based keyword fallback.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

// Config holds classifier configuration.
type Config struct {
	APIKey          string
	BaseURL         string
	RequestIDPrefix string
	ItemsPerChunk   int
	Timeout         time.Duration
}

// Classifier classifies receipt items as food or non-food. Classify
// never fails: every provider problem degrades to the keyword fallback.
type Classifier struct {
	apiKey          string
	baseURL         string
	requestIDPrefix string
	itemsPerChunk   int
	httpClient      *http.Client
	sleep           func(time.Duration)
	logger          *zap.Logger
}

// NewClassifier creates a classifier. An empty API key selects the
// fallback path permanently.
func NewClassifier(cfg Config, logger *zap.Logger) *Classifier {
	itemsPerChunk := cfg.ItemsPerChunk
	if itemsPerChunk == 0 {
		itemsPerChunk = 30
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	prefix := cfg.RequestIDPrefix
	if prefix == "" {
		prefix = "food-classifier"
	}
	return &Classifier{
		apiKey:          cfg.APIKey,
		baseURL:         cfg.BaseURL,
		requestIDPrefix: prefix,
		itemsPerChunk:   itemsPerChunk,
		httpClient:      &http.Client{Timeout: timeout},
		sleep:           time.Sleep,
		logger:          logger,
	}
}

// Classify returns the food items among the given receipt items, each
// tagged with a canonical category and its classification provenance.
// Non-food items are dropped. Empty input returns empty output without
// any provider call.
func (c *Classifier) Classify(ctx context.Context, items []models.ReceiptItem) []models.ClassifiedFoodItem {
	if len(items) == 0 {
		return []models.ClassifiedFoodItem{}
	}

	if c.apiKey == "" {
		c.logger.Warn("CLOVA Studio API key missing, using rule-based fallback")
		return FallbackClassify(items)
	}

	classified, err := c.classifyWithAI(ctx, items)
	if err != nil {
		// A failed chunk fails the whole batch over to the fallback.
		// Simpler than partial-failure bookkeeping, at some cost in
		// precision.
		c.logger.Error("AI classification failed, using rule-based fallback", zap.Error(err))
		return FallbackClassify(items)
	}

	c.logger.Info("AI classification complete",
		zap.Int("input", len(items)),
		zap.Int("food", len(classified)))
	return classified
}

func (c *Classifier) classifyWithAI(ctx context.Context, items []models.ReceiptItem) ([]models.ClassifiedFoodItem, error) {
	chunks := chunkItems(items, c.itemsPerChunk)
	c.logger.Info("Starting AI classification",
		zap.Int("items", len(items)),
		zap.Int("chunks", len(chunks)),
		zap.Int("items_per_chunk", c.itemsPerChunk))

	var all []models.ClassifiedFoodItem
	for idx, chunk := range chunks {
		requestID := fmt.Sprintf("%s-%d-%d", c.requestIDPrefix, time.Now().UnixMilli(), idx)

		content, err := c.callChunk(ctx, requestID, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", idx, err)
		}

		var parsed aiResponse
		if err := SafeExtractJSON(content, &parsed); err != nil {
			// An unparseable chunk contributes nothing; it does not
			// fail the batch.
			c.logger.Warn("Unparseable classification response",
				zap.String("request_id", requestID),
				zap.Error(err))
			continue
		}

		all = append(all, mapAIResults(parsed, chunk)...)
	}

	if all == nil {
		all = []models.ClassifiedFoodItem{}
	}
	return all, nil
}

// callChunk performs one chat call for a chunk, retrying exactly once
// after a transient (429 or 5xx) failure.
func (c *Classifier) callChunk(ctx context.Context, requestID string, chunk []models.ReceiptItem) (string, error) {
	content, err := c.postChat(ctx, requestID, chunk)
	if err == nil {
		return content, nil
	}

	var statusErr *statusError
	if asStatusError(err, &statusErr) && (statusErr.code == http.StatusTooManyRequests || statusErr.code >= 500) {
		c.logger.Warn("Transient classification error, retrying once",
			zap.String("request_id", requestID),
			zap.Int("status", statusErr.code))
		c.sleep(800 * time.Millisecond)
		return c.postChat(ctx, requestID, chunk)
	}

	return "", err
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages          []chatMessage `json:"messages"`
	TopP              float64       `json:"topP"`
	TopK              int           `json:"topK"`
	MaxTokens         int           `json:"maxTokens"`
	Temperature       float64       `json:"temperature"`
	RepetitionPenalty float64       `json:"repetitionPenalty"`
	Stop              []string      `json:"stop"`
	Seed              int           `json:"seed"`
}

type chatResponse struct {
	Result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"result"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("classification endpoint returned status %d", e.code)
}

func asStatusError(err error, target **statusError) bool {
	se, ok := err.(*statusError)
	if ok {
		*target = se
	}
	return ok
}

func (c *Classifier) postChat(ctx context.Context, requestID string, chunk []models.ReceiptItem) (string, error) {
	body := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(chunk)},
		},
		TopP:              0.8,
		TopK:              0,
		MaxTokens:         1200,
		Temperature:       0.3,
		RepetitionPenalty: 1.1,
		Stop:              []string{},
		Seed:              0,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-NCP-CLOVASTUDIO-REQUEST-ID", requestID)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &statusError{code: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if parsed.Result.Message.Content != "" {
		return parsed.Result.Message.Content, nil
	}
	if len(parsed.Choices) > 0 {
		return parsed.Choices[0].Message.Content, nil
	}
	return "", nil
}

func chunkItems(items []models.ReceiptItem, size int) [][]models.ReceiptItem {
	if size <= 0 {
		return [][]models.ReceiptItem{items}
	}
	var chunks [][]models.ReceiptItem
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// --- model output mapping ---

type aiResponse struct {
	Results []aiResult `json:"results"`
}

type aiResult struct {
	Name     string `json:"name"`
	IsFood   bool   `json:"isFood"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// mapAIResults matches model rows back to the original chunk items by
// fuzzy name containment. Unmatched items and items flagged non-food
// are excluded; they never appear with an empty category.
func mapAIResults(parsed aiResponse, chunk []models.ReceiptItem) []models.ClassifiedFoodItem {
	if len(parsed.Results) == 0 {
		return nil
	}

	var out []models.ClassifiedFoodItem
	for _, orig := range chunk {
		matched, ok := findResult(parsed.Results, orig.Name)
		if !ok || !matched.IsFood {
			continue
		}

		out = append(out, models.ClassifiedFoodItem{
			ReceiptItem:  orig,
			Category:     mapCategory(matched.Category),
			AIReason:     matched.Reason,
			ClassifiedBy: models.ClassifiedByAI,
		})
	}
	return out
}

func findResult(results []aiResult, name string) (aiResult, bool) {
	for _, r := range results {
		if nameLike(r.Name, name) {
			return r, true
		}
	}
	return aiResult{}, false
}

// nameLike compares two product names by substring containment after
// stripping everything that is not hangul or alphanumeric.
func nameLike(a, b string) bool {
	na := normalizeName(a)
	nb := normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func normalizeName(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= '가' && r <= '힣':
			sb.WriteRune(r)
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// categoryWhitelist maps model category strings onto the canonical set.
var categoryWhitelist = map[string]string{
	"유제품":  models.CategoryDairy,
	"축산품":  models.CategoryMeat,
	"채소":   models.CategoryVegetable,
	"과일":   models.CategoryFruit,
	"곡류":   models.CategoryGrain,
	"조미료":  models.CategorySeasoning,
	"냉동식품": models.CategoryFrozen,
	"즉석식품": models.CategoryInstant,
	"기타식품": models.CategoryOther,
	"비식품":  models.CategoryNonFood,
}

func mapCategory(candidate string) string {
	if canonical, ok := categoryWhitelist[strings.TrimSpace(candidate)]; ok {
		return canonical
	}
	return models.CategoryOther
}
