package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/classifier"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/ocr"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/receipt"
)

func main() {
	// Parse command line flags
	imagePath := flag.String("image", "", "Path to a receipt image to send to OCR")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	gotenv.Load()

	// Initialize logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ocrURL := os.Getenv("NAVER_OCR_API_URL")
	ocrSecret := os.Getenv("NAVER_OCR_SECRET_KEY")
	clovaKey := os.Getenv("CLOVA_STUDIO_API_KEY")

	fmt.Println("=== CLOVA OCR Connection Test ===")
	fmt.Println("Configuration:")
	fmt.Printf("  OCR API URL set: %v\n", ocrURL != "")
	fmt.Printf("  OCR secret set: %v\n", ocrSecret != "")
	fmt.Printf("  CLOVA Studio key set: %v\n", clovaKey != "")
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	ocrClient := ocr.NewClient(ocr.Config{
		APIURL:    ocrURL,
		SecretKey: ocrSecret,
		Timeout:   *timeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var text string
	var degraded bool

	if *imagePath != "" {
		image, err := os.ReadFile(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to read image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sending %s (%d bytes) to OCR...\n", *imagePath, len(image))

		startTime := time.Now()
		text, degraded = ocrClient.ExtractTextFromImage(ctx, image, *imagePath)
		fmt.Printf("OCR response time: %v\n", time.Since(startTime))
	} else {
		fmt.Println("No --image given, using built-in sample receipt text")
		text = ocr.SampleReceiptText()
		degraded = true
	}

	if degraded && *imagePath != "" {
		fmt.Fprintf(os.Stderr, "❌ OCR degraded to sample text\n")
		fmt.Fprintf(os.Stderr, "Possible causes:\n")
		fmt.Fprintf(os.Stderr, "  1. NAVER_OCR_API_URL or NAVER_OCR_SECRET_KEY not set\n")
		fmt.Fprintf(os.Stderr, "  2. Network connectivity issue\n")
		fmt.Fprintf(os.Stderr, "  3. Invalid OCR secret or API gateway URL\n")
	} else {
		fmt.Println("✓ Extracted receipt text:")
	}
	fmt.Println(text)
	fmt.Println()

	// Parse and classify the extracted text
	items := receipt.ParseReceiptText(text)
	fmt.Printf("Parsed %d candidate items\n", len(items))

	clovaURL := os.Getenv("CLOVA_STUDIO_BASE_URL")
	if clovaURL == "" {
		clovaURL = "https://clovastudio.stream.ntruss.com/v3/chat-completions/HCX-005"
	}
	foodClassifier := classifier.NewClassifier(classifier.Config{
		APIKey:  clovaKey,
		BaseURL: clovaURL,
	}, logger)

	classified := foodClassifier.Classify(ctx, items)

	fmt.Println("\n=== Classified Food Items ===")
	jsonBytes, _ := json.MarshalIndent(classified, "", "  ")
	fmt.Println(string(jsonBytes))

	if !degraded || *imagePath == "" {
		fmt.Println("\n✅ OCR Connection Test PASSED!")
		os.Exit(0)
	}
	os.Exit(1)
}
