package classifier

import (
	"strings"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

// Keyword tables for the rule-based fallback. Deliberately
// conservative: items matching neither list are dropped, unlike the AI
// path which defaults ambiguous items to food.
var foodKeywords = []string{
	// 면/곡류
	"라면", "면", "국수", "파스타", "우동", "냉면", "비빔면", "쌀", "밀가루", "빵", "떡",
	// 육류/어류/해산물
	"돼지", "소고기", "닭", "생선", "참치", "연어", "새우", "고기",
	// 유제품
	"우유", "치즈", "요구르트", "버터", "크림",
	// 채소/과일
	"양파", "당근", "배추", "오이", "토마토", "사과", "바나나", "버섯",
	// 조미료/소스
	"소금", "설탕", "간장", "된장", "고추장", "식용유", "기름",
	// 가공/즉석/반찬
	"만두", "떡볶이", "김치", "반찬", "도시락",
	// 음료
	"물", "음료", "주스", "차", "커피",
}

var nonFoodKeywords = []string{
	"세제", "샴푸", "비누", "화장지", "휴지", "물티슈", "치약",
	"화장품", "로션", "마스크", "약", "비타민",
	"배터리", "전구", "볼펜", "종이", "세탁세제", "섬유유연제",
}

// FallbackClassify classifies items by keyword tables alone. Pure
// function of its input: a non-food keyword match excludes the item
// outright (and wins over any food keyword match), a food keyword match
// includes it with a guessed category, anything else is dropped.
func FallbackClassify(items []models.ReceiptItem) []models.ClassifiedFoodItem {
	var result []models.ClassifiedFoodItem
	for _, item := range items {
		name := strings.ToLower(item.Name)
		if name == "" {
			continue
		}

		if containsAny(name, nonFoodKeywords) {
			continue
		}

		if !containsAny(name, foodKeywords) {
			continue
		}

		result = append(result, models.ClassifiedFoodItem{
			ReceiptItem:  item,
			Category:     guessCategory(name),
			ClassifiedBy: models.ClassifiedByFallback,
		})
	}
	return result
}

func containsAny(name string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

func guessCategory(name string) string {
	switch {
	case containsAny(name, []string{"라면", "면", "쌀", "빵", "밀가루", "떡"}):
		return models.CategoryGrain
	case containsAny(name, []string{"우유", "치즈", "요구르트", "버터", "크림"}):
		return models.CategoryDairy
	case containsAny(name, []string{"돼지", "소고기", "닭", "고기"}):
		return models.CategoryMeat
	case containsAny(name, []string{"양파", "당근", "배추", "오이", "토마토", "버섯"}):
		return models.CategoryVegetable
	case containsAny(name, []string{"사과", "바나나"}):
		return models.CategoryFruit
	case containsAny(name, []string{"소금", "설탕", "간장", "된장", "고추장", "식용유", "기름"}):
		return models.CategorySeasoning
	case strings.Contains(name, "냉동"):
		return models.CategoryFrozen
	case containsAny(name, []string{"만두", "떡볶이", "김치", "도시락"}):
		return models.CategoryInstant
	default:
		return models.CategoryOther
	}
}
