package classifier

import (
	"fmt"
	"strings"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

const systemPrompt = "당신은 마트 영수증 품목을 식품/비식품으로 분류하는 전문가입니다. 결과는 JSON만 출력하세요."

const userPromptTemplate = `다음은 마트 영수증에서 OCR로 인식된 상품들입니다.
OCR 인식 과정에서 일부 글자가 잘릴 수 있으므로, 상식적으로 판단하여 올바른 상품명으로 정정한 후 분류해주세요.

상품 목록:
%s

다음 JSON 형식으로만 응답해주세요 (다른 설명/텍스트 없이):
{
  "results": [
    {
      "name": "정정된 상품명",
      "isFood": true/false,
      "category": "유제품|축산품|채소|과일|곡류|조미료|냉동식품|즉석식품|기타식품|비식품",
      "reason": "분류 이유 (간단히)"
    }
  ]
}

텍스트 정정 예시:
- "돈까", "돈가" → "돈까스" 또는 "돈가스"
- "치킨너", "치킨넛" → "치킨너겟"
- "볶음", "김치볶" → "볶음밥", "김치볶음밥"
- "떡볶" → "떡볶이"
- "샌드위" → "샌드위치"

분류 기준:
- 식품: 사람이 먹을 수 있는 모든 음식, 음료, 조리 재료, 즉석식품, 냉동식품
- 비식품: 생활용품, 화장품, 세제, 휴지, 약품, 의류 등
- 애매한 경우에는 "식품"으로 분류하되, reason에 근거를 간단히 기입`

// buildUserPrompt renders the itemized chunk into the classification
// prompt. Quantity and price details ride along in parentheses so the
// model can use them as hints.
func buildUserPrompt(chunk []models.ReceiptItem) string {
	lines := make([]string, 0, len(chunk))
	for _, item := range chunk {
		var details []string
		if item.Quantity > 0 {
			details = append(details, fmt.Sprintf("%d%s", item.Quantity, item.Unit))
		}
		if item.Price > 0 {
			details = append(details, fmt.Sprintf("%d원", item.Price))
		}
		if len(details) > 0 {
			lines = append(lines, fmt.Sprintf("%s (%s)", item.Name, strings.Join(details, ", ")))
		} else {
			lines = append(lines, item.Name)
		}
	}
	return fmt.Sprintf(userPromptTemplate, strings.Join(lines, "\n"))
}
