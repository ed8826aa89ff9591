package receipt

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/pdfutil"
)

// Uploader pushes a receipt image to object storage.
type Uploader interface {
	UploadReceipt(ctx context.Context, image []byte, filename string) models.StorageResult
}

// TextExtractor runs OCR on a receipt, by URL or by raw bytes. The
// boolean reports degraded (sample) text.
type TextExtractor interface {
	ExtractTextFromURL(ctx context.Context, imageURL, filename string) (string, bool)
	ExtractTextFromImage(ctx context.Context, image []byte, filename string) (string, bool)
}

// FoodClassifier picks the food items out of parsed receipt items.
type FoodClassifier interface {
	Classify(ctx context.Context, items []models.ReceiptItem) []models.ClassifiedFoodItem
}

// Result is everything one receipt produced, including intermediate
// artifacts kept for diagnostics.
type Result struct {
	Success      bool                      `json:"success"`
	FoodItems    []models.PipelineFoodItem `json:"foodItems"`
	OriginalText string                    `json:"originalText,omitempty"`
	AllItems     []models.ReceiptItem      `json:"allItems,omitempty"`
	StorageInfo  *models.StorageResult     `json:"storageInfo,omitempty"`
	Degraded     bool                      `json:"degraded,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// Pipeline sequences upload, OCR, parsing, classification and expiry
// assignment for one receipt image.
type Pipeline struct {
	uploader   Uploader
	ocr        TextExtractor
	classifier FoodClassifier
	now        func() time.Time
	logger     *zap.Logger
}

// NewPipeline wires the pipeline from its injected stages.
func NewPipeline(uploader Uploader, ocr TextExtractor, classifier FoodClassifier, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		uploader:   uploader,
		ocr:        ocr,
		classifier: classifier,
		now:        time.Now,
		logger:     logger,
	}
}

// ProcessReceipt runs the full pipeline. It never panics outward and
// never returns an error: the worst case is a Success=false result
// carrying the sample food items, so the caller always has a
// well-formed, non-empty list to show.
func (p *Pipeline) ProcessReceipt(ctx context.Context, image []byte, filename string) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Receipt pipeline panicked", zap.Any("panic", r))
			result = &Result{
				Success:   false,
				FoodItems: SampleFoodItems(p.now()),
				Degraded:  true,
				Error:     fmt.Sprintf("receipt processing failed: %v", r),
			}
		}
	}()

	p.logger.Info("Processing receipt", zap.String("filename", filename), zap.Int("size", len(image)))

	// PDF receipts enter the pipeline as a rendered first page.
	if pdfutil.IsPDF(filename) {
		rendered, err := pdfutil.FirstPageImage(image)
		if err != nil {
			p.logger.Warn("PDF rendering failed, passing raw bytes to OCR", zap.Error(err))
		} else {
			image = rendered
			filename = filename[:len(filename)-len(".pdf")] + ".jpg"
		}
	}

	storageInfo := p.uploader.UploadReceipt(ctx, image, filename)

	var text string
	var degraded bool
	if storageInfo.Success && storageInfo.URL != "" {
		text, degraded = p.ocr.ExtractTextFromURL(ctx, storageInfo.URL, filename)
	} else {
		p.logger.Info("Object storage unavailable, sending image bytes to OCR directly",
			zap.String("reason", storageInfo.Error))
		text, degraded = p.ocr.ExtractTextFromImage(ctx, image, filename)
	}

	allItems := ParseReceiptText(text)
	classified := p.classifier.Classify(ctx, allItems)

	now := p.now()
	foodItems := make([]models.PipelineFoodItem, 0, len(classified))
	for _, item := range classified {
		foodItems = append(foodItems, models.PipelineFoodItem{
			ClassifiedFoodItem: item,
			ExpiryDate:         models.DefaultExpiryDate(item.Category, now),
			AddedAt:            now.UTC().Format(time.RFC3339),
		})
	}

	p.logger.Info("Receipt processed",
		zap.Int("parsed_items", len(allItems)),
		zap.Int("food_items", len(foodItems)),
		zap.Bool("degraded", degraded))

	return &Result{
		Success:      true,
		FoodItems:    foodItems,
		OriginalText: text,
		AllItems:     allItems,
		StorageInfo:  &storageInfo,
		Degraded:     degraded,
	}
}

// SampleFoodItems is the static fallback list returned when the
// pipeline itself fails.
func SampleFoodItems(now time.Time) []models.PipelineFoodItem {
	sample := []struct {
		name     string
		category string
		quantity int
		unit     string
	}{
		{"우유", models.CategoryDairy, 1, "L"},
		{"달걀", models.CategoryMeat, 10, "개"},
		{"토마토", models.CategoryVegetable, 500, "g"},
		{"양파", models.CategoryVegetable, 1, "kg"},
		{"식빵", models.CategoryGrain, 1, "봉"},
	}

	items := make([]models.PipelineFoodItem, 0, len(sample))
	for _, s := range sample {
		items = append(items, models.PipelineFoodItem{
			ClassifiedFoodItem: models.ClassifiedFoodItem{
				ReceiptItem: models.ReceiptItem{
					Name:     s.name,
					Quantity: s.quantity,
					Unit:     s.unit,
				},
				Category:     s.category,
				ClassifiedBy: models.ClassifiedByFallback,
			},
			ExpiryDate: models.DefaultExpiryDate(s.category, now),
			AddedAt:    now.UTC().Format(time.RFC3339),
		})
	}
	return items
}
