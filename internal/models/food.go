package models

import "time"

// Canonical food categories. The classifier maps free-form model output
// onto this set; anything unrecognized becomes CategoryOther.
const (
	CategoryDairy     = "유제품"
	CategoryMeat      = "축산품"
	CategoryVegetable = "채소"
	CategoryFruit     = "과일"
	CategoryGrain     = "곡류"
	CategorySeasoning = "조미료"
	CategoryFrozen    = "냉동식품"
	CategoryInstant   = "즉석식품"
	CategoryOther     = "기타"
	CategoryNonFood   = "비식품"
)

// expiryDays maps a category to its default shelf life in days.
var expiryDays = map[string]int{
	CategoryDairy:     7,
	CategoryMeat:      5,
	CategoryVegetable: 10,
	CategoryFruit:     7,
	CategoryGrain:     14,
	CategorySeasoning: 365,
}

const defaultExpiryDays = 7

// ExpiryDays returns the shelf life in days for a category.
func ExpiryDays(category string) int {
	if days, ok := expiryDays[category]; ok {
		return days
	}
	return defaultExpiryDays
}

// DefaultExpiryDate computes the expiry date for a category relative to
// now, as a date-only ISO string (no time component).
func DefaultExpiryDate(category string, now time.Time) string {
	return now.AddDate(0, 0, ExpiryDays(category)).Format("2006-01-02")
}

// Food is a persisted fridge or cart item. A user holds at most one row
// per name; re-adding the same name increments Quantity, and decreasing
// Quantity to zero deletes the row.
type Food struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Quantity     int       `json:"quantity"`
	Unit         string    `json:"unit,omitempty"`
	ExpiryDate   string    `json:"expiry_date,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}
