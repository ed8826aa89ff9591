// Package receipt turns OCR text into candidate items and orchestrates
// the full receipt-to-fridge pipeline.
package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

var (
	hangulRe      = regexp.MustCompile(`[가-힣]`)
	qtyLineRe     = regexp.MustCompile(`^([0-9,]+)\s+(\d+)\s+([0-9,]+)$`)
	barcodeRe     = regexp.MustCompile(`\d{10,}`)
	bizNumberRe   = regexp.MustCompile(`[0-9]{3}-[0-9]{2}-[0-9]+`)
	parenDigitsRe = regexp.MustCompile(`\(\d+\)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// foodLineKeywords marks a line as a product even when the charset
// heuristic alone would not.
var foodLineKeywords = []string{
	"돈가스", "돈까스", "볶음밥", "라면", "국수", "치킨", "피자",
	"햄버거", "샐러드", "김밥", "우동", "짜장면", "탕수육",
}

// storeTokens are store-name fragments that disqualify a line from
// being treated as a product.
var storeTokens = []string{"emart", "이마트"}

// candidateLookahead bounds how far below a product line we scan for
// its "<unit price> <qty> <total>" detail line.
const candidateLookahead = 7

// ParseReceiptText extracts candidate product items from raw OCR text.
// Deterministic and pure: same text, same items.
//
// A line qualifies as a candidate when it contains a known food keyword
// or when it is hangul-bearing, 2-20 characters long and not a store
// token. That heuristic intentionally over-matches (slogans can pass);
// the classifier downstream is responsible for dropping non-food.
func ParseReceiptText(raw string) []models.ReceiptItem {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var items []models.ReceiptItem
	for i, line := range lines {
		if !isCandidateLine(line) {
			continue
		}

		quantity := 1
		for j := i + 1; j < len(lines) && j <= i+candidateLookahead; j++ {
			if m := qtyLineRe.FindStringSubmatch(lines[j]); m != nil {
				if qty, err := strconv.Atoi(m[2]); err == nil {
					quantity = qty
				}
				break
			}
		}

		name := cleanProductName(line)
		if utf8.RuneCountInString(name) < 2 || !hangulRe.MatchString(name) {
			continue
		}

		items = append(items, models.ReceiptItem{Name: name, Quantity: quantity})
	}

	return items
}

func isCandidateLine(line string) bool {
	for _, keyword := range foodLineKeywords {
		if strings.Contains(line, keyword) {
			return true
		}
	}

	length := utf8.RuneCountInString(line)
	if !hangulRe.MatchString(line) || length < 2 || length > 20 {
		return false
	}

	lower := strings.ToLower(line)
	for _, token := range storeTokens {
		if strings.Contains(lower, token) {
			return false
		}
	}

	return true
}

// cleanProductName strips barcodes (10+ digit runs), business
// registration numbers, parenthesized digits and collapses whitespace.
func cleanProductName(line string) string {
	name := barcodeRe.ReplaceAllString(line, "")
	name = bizNumberRe.ReplaceAllString(name, "")
	name = parenDigitsRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
