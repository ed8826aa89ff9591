package models

// ReceiptItem is a raw candidate extracted from OCR text by the receipt
// parser. It has no identity beyond its position in the batch.
type ReceiptItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
	Price    int    `json:"price,omitempty"`
}

// ClassifiedFoodItem is a receipt item that survived food/non-food
// classification. Non-food items are dropped, never marked.
type ClassifiedFoodItem struct {
	ReceiptItem
	Category     string `json:"category"`
	AIReason     string `json:"aiReason,omitempty"`
	ClassifiedBy string `json:"classifiedBy"`
}

// Classification provenance values carried by ClassifiedBy.
const (
	ClassifiedByAI       = "AI"
	ClassifiedByFallback = "fallback"
)

// PipelineFoodItem is the final pipeline output: a classified item with
// its assigned expiry date, ready to be shown or added to a fridge.
type PipelineFoodItem struct {
	ClassifiedFoodItem
	ExpiryDate string `json:"expiry_date"`
	AddedAt    string `json:"addedAt"`
}

// StorageResult is the ephemeral outcome of an object storage upload
// attempt. It is returned from the storage boundary instead of an error
// so callers can always continue on the direct-OCR path.
type StorageResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Key     string `json:"key,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
	Error   string `json:"error,omitempty"`
}
