package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/export"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/receipt"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/recipe"
)

// maxReceiptSize bounds uploaded receipt images.
const maxReceiptSize = 20 << 20 // 20MB

// ReceiptProcessor runs the receipt pipeline.
type ReceiptProcessor interface {
	ProcessReceipt(ctx context.Context, image []byte, filename string) *receipt.Result
}

// ItemStore is the fridge/cart persistence surface the handlers need.
type ItemStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Food, error)
	Add(ctx context.Context, item models.Food) (*models.Food, bool, error)
	Decrease(ctx context.Context, userID int64, name string, count int) (*models.Food, bool, error)
}

// RecipeRecommender produces recipe suggestions for fridge contents.
type RecipeRecommender interface {
	Recommend(ctx context.Context, ingredients []models.Food) []recipe.Recipe
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	pipeline    ReceiptProcessor
	foodRepo    ItemStore
	cartRepo    ItemStore
	recommender RecipeRecommender
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	pipeline ReceiptProcessor,
	foodRepo ItemStore,
	cartRepo ItemStore,
	recommender RecipeRecommender,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		pipeline:    pipeline,
		foodRepo:    foodRepo,
		cartRepo:    cartRepo,
		recommender: recommender,
		logger:      logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nengteol-fridge",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// UploadReceipt handles POST /api/receipt/upload. The multipart field
// "receipt" must be an image (or a PDF) of at most 20MB.
func (h *Handlers) UploadReceipt(c *gin.Context) {
	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "영수증 이미지가 필요합니다",
		})
		return
	}

	if file.Size > maxReceiptSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "파일 크기는 20MB를 넘을 수 없습니다",
		})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "이미지 파일만 업로드 가능합니다",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded receipt", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "영수증 처리 중 오류가 발생했습니다",
			"message": err.Error(),
		})
		return
	}
	defer src.Close()

	image, err := io.ReadAll(src)
	if err != nil {
		h.logger.Error("Failed to read uploaded receipt", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "영수증 처리 중 오류가 발생했습니다",
			"message": err.Error(),
		})
		return
	}

	h.logger.Info("Receipt uploaded", zap.String("filename", file.Filename), zap.Int64("size", file.Size))

	result := h.pipeline.ProcessReceipt(c.Request.Context(), image, file.Filename)
	if !result.Success {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "영수증 분석 중 오류가 발생했습니다",
			"message":   result.Error,
			"foodItems": result.FoodItems, // sample data so the UI stays populated
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("%d개의 식품을 발견했습니다", len(result.FoodItems)),
		"foodItems":    result.FoodItems,
		"originalText": result.OriginalText,
		"degraded":     result.Degraded,
	})
}

// AddToFridgeRequest is the body of POST /api/receipt/add-to-fridge.
type AddToFridgeRequest struct {
	FoodItems []map[string]interface{} `json:"foodItems"`
}

// AddToFridge handles POST /api/receipt/add-to-fridge. It stamps each
// item with an id and timestamp and echoes it back; this path is
// deliberately not persisted.
func (h *Handlers) AddToFridge(c *gin.Context) {
	var req AddToFridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FoodItems == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "foodItems 배열이 필요합니다",
		})
		return
	}

	now := time.Now()
	addedItems := make([]map[string]interface{}, 0, len(req.FoodItems))
	for i, item := range req.FoodItems {
		stamped := make(map[string]interface{}, len(item)+3)
		for k, v := range item {
			stamped[k] = v
		}
		stamped["id"] = now.UnixMilli() + int64(i)
		stamped["status"] = "active"
		stamped["addedAt"] = now.UTC().Format(time.RFC3339)
		addedItems = append(addedItems, stamped)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("%d개 식품이 냉장고에 추가되었습니다", len(addedItems)),
		"addedItems": addedItems,
	})
}

// AddItemRequest is the body of POST /api/fridge and POST /api/cart.
type AddItemRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category"`
	Quantity   int    `json:"count"`
	Unit       string `json:"unit"`
	ExpiryDate string `json:"expiry_date"`
}

// DecreaseItemRequest is the body of the decrease endpoints.
type DecreaseItemRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Count  int    `json:"count"`
}

// ListFridge handles GET /api/fridge/:user_id
func (h *Handlers) ListFridge(c *gin.Context) {
	h.listItems(c, h.foodRepo)
}

// AddFridgeItem handles POST /api/fridge
func (h *Handlers) AddFridgeItem(c *gin.Context) {
	h.addItem(c, h.foodRepo)
}

// DecreaseFridgeItem handles POST /api/fridge/decrease
func (h *Handlers) DecreaseFridgeItem(c *gin.Context) {
	h.decreaseItem(c, h.foodRepo)
}

// ListCart handles GET /api/cart/:user_id
func (h *Handlers) ListCart(c *gin.Context) {
	h.listItems(c, h.cartRepo)
}

// AddCartItem handles POST /api/cart
func (h *Handlers) AddCartItem(c *gin.Context) {
	h.addItem(c, h.cartRepo)
}

// DecreaseCartItem handles POST /api/cart/decrease
func (h *Handlers) DecreaseCartItem(c *gin.Context) {
	h.decreaseItem(c, h.cartRepo)
}

func (h *Handlers) listItems(c *gin.Context, store ItemStore) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	items, err := store.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list items", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "음식을 불러오는 중 오류 발생",
		})
		return
	}
	if items == nil {
		items = []models.Food{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

func (h *Handlers) addItem(c *gin.Context, store ItemStore) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "user_id와 name이 필요합니다",
		})
		return
	}

	category := req.Category
	if category == "" {
		category = models.CategoryOther
	}
	expiryDate := req.ExpiryDate
	if expiryDate == "" {
		expiryDate = models.DefaultExpiryDate(category, time.Now())
	}

	item, created, err := store.Add(c.Request.Context(), models.Food{
		UserID:     req.UserID,
		Name:       req.Name,
		Category:   category,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		ExpiryDate: expiryDate,
	})
	if err != nil {
		h.logger.Error("Failed to add item", zap.Int64("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "음식 추가 실패",
		})
		return
	}

	status := http.StatusOK
	message := fmt.Sprintf("기존 음식 수량 + %d", req.Quantity)
	if created {
		status = http.StatusCreated
		message = "새 음식 추가 성공"
	}

	c.JSON(status, gin.H{
		"success": true,
		"data":    item,
		"message": message,
	})
}

func (h *Handlers) decreaseItem(c *gin.Context, store ItemStore) {
	var req DecreaseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "user_id와 name이 필요합니다",
		})
		return
	}

	item, deleted, err := store.Decrease(c.Request.Context(), req.UserID, req.Name, req.Count)
	if err != nil {
		h.logger.Error("Failed to decrease item", zap.Int64("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "음식 수량 변경 실패",
		})
		return
	}

	if item == nil && !deleted {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": fmt.Sprintf("%s-음식을 찾을 수 없습니다", req.Name),
		})
		return
	}

	if deleted {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "음식 삭제 성공",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
		"message": "음식 수량 감소 성공",
	})
}

// ExportFridge handles GET /api/fridge/:user_id/export
func (h *Handlers) ExportFridge(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	items, err := h.foodRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load fridge for export", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "냉장고 내보내기 실패",
		})
		return
	}

	workbook, err := export.WriteInventory(items)
	if err != nil {
		h.logger.Error("Failed to build inventory workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "냉장고 내보내기 실패",
		})
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("fridge-%d-%s.xlsx", userID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream inventory workbook", zap.Error(err))
	}
}

// RecommendRecipesRequest is the body of POST /api/recipes/recommend.
type RecommendRecipesRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// RecommendRecipes handles POST /api/recipes/recommend: recipes for
// whatever is currently in the user's fridge.
func (h *Handlers) RecommendRecipes(c *gin.Context) {
	var req RecommendRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "user_id가 필요합니다",
		})
		return
	}

	ingredients, err := h.foodRepo.ListByUser(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Error("Failed to load fridge for recipes", zap.Int64("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "레시피 추천 실패",
		})
		return
	}

	recipes := h.recommender.Recommend(c.Request.Context(), ingredients)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    recipes,
	})
}

func parseUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "잘못된 user_id 입니다",
		})
		return 0, false
	}
	return userID, true
}
