package receipt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

type fakeUploader struct {
	result       models.StorageResult
	lastFilename string
}

func (f *fakeUploader) UploadReceipt(_ context.Context, _ []byte, filename string) models.StorageResult {
	f.lastFilename = filename
	return f.result
}

type fakeOCR struct {
	text         string
	degraded     bool
	calledByURL  bool
	calledByByte bool
}

func (f *fakeOCR) ExtractTextFromURL(_ context.Context, _, _ string) (string, bool) {
	f.calledByURL = true
	return f.text, f.degraded
}

func (f *fakeOCR) ExtractTextFromImage(_ context.Context, _ []byte, _ string) (string, bool) {
	f.calledByByte = true
	return f.text, f.degraded
}

type fakeClassifier struct {
	result    []models.ClassifiedFoodItem
	panicWith interface{}
}

func (f *fakeClassifier) Classify(_ context.Context, _ []models.ReceiptItem) []models.ClassifiedFoodItem {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.result
}

var fixedNow = time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

func newTestPipeline(uploader Uploader, ocr TextExtractor, classifier FoodClassifier) *Pipeline {
	p := NewPipeline(uploader, ocr, classifier, zap.NewNop())
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestProcessReceipt_UploadedImageGoesToURLOCR(t *testing.T) {
	uploader := &fakeUploader{result: models.StorageResult{
		Success: true,
		URL:     "https://storage.example.com/receipts/abc.jpg",
		Key:     "receipts/abc.jpg",
	}}
	ocr := &fakeOCR{text: "서울우유 1L\n2,980 1 2,980"}
	classifier := &fakeClassifier{result: []models.ClassifiedFoodItem{
		{
			ReceiptItem:  models.ReceiptItem{Name: "서울우유 1L", Quantity: 1},
			Category:     models.CategoryDairy,
			ClassifiedBy: models.ClassifiedByAI,
		},
	}}

	p := newTestPipeline(uploader, ocr, classifier)
	result := p.ProcessReceipt(context.Background(), []byte{0xff, 0xd8}, "receipt.jpg")

	require.True(t, result.Success)
	assert.True(t, ocr.calledByURL, "a successful upload routes OCR through the URL")
	assert.False(t, ocr.calledByByte)
	assert.False(t, result.Degraded)

	require.Len(t, result.FoodItems, 1)
	item := result.FoodItems[0]
	assert.Equal(t, "서울우유 1L", item.Name)
	assert.Equal(t, "2025-09-05", item.ExpiryDate, "dairy gets a 7-day shelf life")
	assert.Equal(t, "2025-08-29T12:00:00Z", item.AddedAt)

	require.NotNil(t, result.StorageInfo)
	assert.Equal(t, "receipts/abc.jpg", result.StorageInfo.Key)
	assert.NotEmpty(t, result.AllItems)
	assert.Contains(t, result.OriginalText, "서울우유")
}

func TestProcessReceipt_StorageFailureFallsBackToByteOCR(t *testing.T) {
	uploader := &fakeUploader{result: models.StorageResult{
		Success: false,
		Error:   "storage not configured",
	}}
	ocr := &fakeOCR{text: "양파 1kg", degraded: false}
	classifier := &fakeClassifier{}

	p := newTestPipeline(uploader, ocr, classifier)
	result := p.ProcessReceipt(context.Background(), []byte{0xff, 0xd8}, "receipt.jpg")

	require.True(t, result.Success)
	assert.True(t, ocr.calledByByte, "no upload URL means the image bytes go to OCR directly")
	assert.False(t, ocr.calledByURL)
	assert.Empty(t, result.FoodItems)
	assert.NotNil(t, result.FoodItems, "food items are an empty list, never nil")
}

func TestProcessReceipt_DegradedOCRPropagates(t *testing.T) {
	uploader := &fakeUploader{result: models.StorageResult{Success: false}}
	ocr := &fakeOCR{text: "우유 1L", degraded: true}
	classifier := &fakeClassifier{}

	p := newTestPipeline(uploader, ocr, classifier)
	result := p.ProcessReceipt(context.Background(), []byte{0x01}, "receipt.jpg")

	assert.True(t, result.Success)
	assert.True(t, result.Degraded, "sample OCR text marks the whole result degraded")
}

func TestProcessReceipt_PanicRecoversToSampleItems(t *testing.T) {
	uploader := &fakeUploader{result: models.StorageResult{Success: false}}
	ocr := &fakeOCR{text: "우유"}
	classifier := &fakeClassifier{panicWith: "classifier exploded"}

	p := newTestPipeline(uploader, ocr, classifier)
	result := p.ProcessReceipt(context.Background(), []byte{0x01}, "receipt.jpg")

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.Error, "classifier exploded")
	assert.Equal(t, SampleFoodItems(fixedNow), result.FoodItems, "the caller still gets a non-empty list")
}

func TestProcessReceipt_UnrenderablePDFPassesRawBytes(t *testing.T) {
	uploader := &fakeUploader{result: models.StorageResult{Success: false}}
	ocr := &fakeOCR{text: "우유"}
	classifier := &fakeClassifier{}

	p := newTestPipeline(uploader, ocr, classifier)
	result := p.ProcessReceipt(context.Background(), []byte("not a real pdf"), "receipt.pdf")

	require.True(t, result.Success)
	assert.Equal(t, "receipt.pdf", uploader.lastFilename, "rendering failure keeps the original file")
}

func TestSampleFoodItems(t *testing.T) {
	items := SampleFoodItems(fixedNow)

	require.NotEmpty(t, items)
	for _, item := range items {
		assert.NotEmpty(t, item.Name)
		assert.NotEmpty(t, item.Category)
		assert.Equal(t, models.ClassifiedByFallback, item.ClassifiedBy)
		assert.NotEmpty(t, item.ExpiryDate)
		assert.Equal(t, "2025-08-29T12:00:00Z", item.AddedAt)
	}

	assert.Equal(t, "우유", items[0].Name)
	assert.Equal(t, "2025-09-05", items[0].ExpiryDate)
}
