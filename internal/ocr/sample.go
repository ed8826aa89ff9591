package ocr

// SampleReceiptText is the canned receipt returned whenever the OCR
// provider is unavailable or recognizes nothing. It keeps the rest of
// the pipeline exercised in degraded mode.
func SampleReceiptText() string {
	return `
롯데마트 서울역점
2025-08-29 15:30

우유 1L
달걀 10개
토마토 500g
양파 1kg
식빵 1봉
바나나 1송이
치킨너겟 1팩
세제 1개
휴지 1팩
샴푸 1개

합계
카드결제
`
}
