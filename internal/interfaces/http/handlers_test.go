package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/receipt"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/recipe"
)

type fakePipeline struct {
	result       *receipt.Result
	lastFilename string
}

func (f *fakePipeline) ProcessReceipt(_ context.Context, _ []byte, filename string) *receipt.Result {
	f.lastFilename = filename
	return f.result
}

type fakeStore struct {
	items       []models.Food
	listErr     error
	addItem     *models.Food
	addCreated  bool
	addErr      error
	decItem     *models.Food
	decDeleted  bool
	decErr      error
	lastAdded   models.Food
	lastDecName string
}

func (f *fakeStore) ListByUser(_ context.Context, _ int64) ([]models.Food, error) {
	return f.items, f.listErr
}

func (f *fakeStore) Add(_ context.Context, item models.Food) (*models.Food, bool, error) {
	f.lastAdded = item
	return f.addItem, f.addCreated, f.addErr
}

func (f *fakeStore) Decrease(_ context.Context, _ int64, name string, _ int) (*models.Food, bool, error) {
	f.lastDecName = name
	return f.decItem, f.decDeleted, f.decErr
}

type fakeRecommender struct {
	recipes []recipe.Recipe
}

func (f *fakeRecommender) Recommend(_ context.Context, _ []models.Food) []recipe.Recipe {
	return f.recipes
}

type testEnv struct {
	server      *Server
	pipeline    *fakePipeline
	foodStore   *fakeStore
	cartStore   *fakeStore
	recommender *fakeRecommender
}

func newTestEnv() *testEnv {
	env := &testEnv{
		pipeline:    &fakePipeline{result: &receipt.Result{Success: true, FoodItems: []models.PipelineFoodItem{}}},
		foodStore:   &fakeStore{},
		cartStore:   &fakeStore{},
		recommender: &fakeRecommender{},
	}
	handlers := NewHandlers(env.pipeline, env.foodStore, env.cartStore, env.recommender, zap.NewNop())
	env.server = NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, handlers, zap.NewNop())
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func receiptUploadRequest(t *testing.T, fieldName, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/receipt/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
}

func TestUploadReceipt_Success(t *testing.T) {
	env := newTestEnv()
	env.pipeline.result = &receipt.Result{
		Success: true,
		FoodItems: []models.PipelineFoodItem{
			{
				ClassifiedFoodItem: models.ClassifiedFoodItem{
					ReceiptItem:  models.ReceiptItem{Name: "우유", Quantity: 1},
					Category:     models.CategoryDairy,
					ClassifiedBy: models.ClassifiedByAI,
				},
				ExpiryDate: "2025-09-05",
			},
		},
		OriginalText: "우유 1L",
	}

	req := receiptUploadRequest(t, "receipt", "receipt.jpg", "image/jpeg", []byte{0xff, 0xd8})
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "1개의 식품을 발견했습니다", body["message"])
	assert.Equal(t, "우유 1L", body["originalText"])
	require.Len(t, body["foodItems"], 1)
	assert.Equal(t, "receipt.jpg", env.pipeline.lastFilename)
}

func TestUploadReceipt_AcceptsPDF(t *testing.T) {
	env := newTestEnv()

	req := receiptUploadRequest(t, "receipt", "receipt.pdf", "application/pdf", []byte("%PDF-1.4"))
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadReceipt_MissingFile(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/receipt/upload", strings.NewReader(""))
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "영수증 이미지가 필요합니다", body["error"])
}

func TestUploadReceipt_RejectsNonImage(t *testing.T) {
	env := newTestEnv()

	req := receiptUploadRequest(t, "receipt", "notes.txt", "text/plain", []byte("hello"))
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "이미지 파일만 업로드 가능합니다", body["error"])
}

func TestUploadReceipt_PipelineFailureStillReturnsItems(t *testing.T) {
	env := newTestEnv()
	env.pipeline.result = &receipt.Result{
		Success:   false,
		FoodItems: receipt.SampleFoodItems(time.Now()),
		Error:     "receipt processing failed",
	}

	req := receiptUploadRequest(t, "receipt", "receipt.jpg", "image/jpeg", []byte{0xff, 0xd8})
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "영수증 분석 중 오류가 발생했습니다", body["error"])
	assert.NotEmpty(t, body["foodItems"], "even a failed upload carries display items")
}

func TestAddToFridge_StampsItems(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/receipt/add-to-fridge", map[string]interface{}{
		"foodItems": []map[string]interface{}{
			{"name": "우유", "category": "유제품"},
			{"name": "양파", "category": "채소"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2개 식품이 냉장고에 추가되었습니다", body["message"])

	added, ok := body["addedItems"].([]interface{})
	require.True(t, ok)
	require.Len(t, added, 2)

	first := added[0].(map[string]interface{})
	assert.Equal(t, "우유", first["name"])
	assert.Equal(t, "active", first["status"])
	assert.NotEmpty(t, first["id"])
	assert.NotEmpty(t, first["addedAt"])
}

func TestAddToFridge_RequiresItems(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/receipt/add-to-fridge", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "foodItems 배열이 필요합니다", body["error"])
}

func TestListFridge(t *testing.T) {
	env := newTestEnv()
	env.foodStore.items = []models.Food{
		{ID: 1, UserID: 7, Name: "우유", Category: models.CategoryDairy, Quantity: 2},
	}

	w := env.do(t, http.MethodGet, "/api/fridge/7", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	require.Len(t, body["data"], 1)
}

func TestListFridge_InvalidUserID(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/fridge/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFridge_EmptyIsAListNotNull(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/fridge/7", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestListFridge_StoreError(t *testing.T) {
	env := newTestEnv()
	env.foodStore.listErr = errors.New("db is down")

	w := env.do(t, http.MethodGet, "/api/fridge/7", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAddFridgeItem_Created(t *testing.T) {
	env := newTestEnv()
	env.foodStore.addItem = &models.Food{ID: 1, UserID: 7, Name: "우유", Category: models.CategoryDairy, Quantity: 1}
	env.foodStore.addCreated = true

	w := env.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{
		"user_id": 7,
		"name":    "우유",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "새 음식 추가 성공", body["message"])
	assert.Equal(t, models.CategoryOther, env.foodStore.lastAdded.Category, "missing category defaults to 기타")
	assert.NotEmpty(t, env.foodStore.lastAdded.ExpiryDate, "missing expiry date gets the category default")
}

func TestAddFridgeItem_Incremented(t *testing.T) {
	env := newTestEnv()
	env.foodStore.addItem = &models.Food{ID: 1, UserID: 7, Name: "우유", Quantity: 5}
	env.foodStore.addCreated = false

	w := env.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{
		"user_id": 7,
		"name":    "우유",
		"count":   2,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "기존 음식 수량")
}

func TestAddFridgeItem_RequiresUserAndName(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"name": "우유"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/fridge", map[string]interface{}{"user_id": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecreaseFridgeItem(t *testing.T) {
	env := newTestEnv()
	env.foodStore.decItem = &models.Food{ID: 1, UserID: 7, Name: "계란", Quantity: 6}

	w := env.do(t, http.MethodPost, "/api/fridge/decrease", map[string]interface{}{
		"user_id": 7,
		"name":    "계란",
		"count":   4,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "음식 수량 감소 성공", body["message"])
	assert.Equal(t, "계란", env.foodStore.lastDecName)
}

func TestDecreaseFridgeItem_DeletesAtZero(t *testing.T) {
	env := newTestEnv()
	env.foodStore.decDeleted = true

	w := env.do(t, http.MethodPost, "/api/fridge/decrease", map[string]interface{}{
		"user_id": 7,
		"name":    "계란",
		"count":   100,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "음식 삭제 성공", body["message"])
}

func TestDecreaseFridgeItem_NotFound(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/fridge/decrease", map[string]interface{}{
		"user_id": 7,
		"name":    "없는음식",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "없는음식")
}

func TestCartRoutesUseCartStore(t *testing.T) {
	env := newTestEnv()
	env.cartStore.items = []models.Food{{ID: 1, UserID: 7, Name: "간장"}}

	w := env.do(t, http.MethodGet, "/api/cart/7", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["data"], 1)

	w = env.do(t, http.MethodGet, "/api/fridge/7", nil)
	assert.Contains(t, w.Body.String(), `"data":[]`, "cart rows stay out of the fridge")
}

func TestExportFridge(t *testing.T) {
	env := newTestEnv()
	env.foodStore.items = []models.Food{
		{ID: 1, UserID: 7, Name: "우유", Category: models.CategoryDairy, Quantity: 2, RegisteredAt: time.Now()},
	}

	w := env.do(t, http.MethodGet, "/api/fridge/7/export", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fridge-7-")
	assert.NotZero(t, w.Body.Len())
}

func TestRecommendRecipes(t *testing.T) {
	env := newTestEnv()
	env.recommender.recipes = []recipe.Recipe{
		{ID: 1, Name: "계란찜", Difficulty: "쉬움"},
	}

	w := env.do(t, http.MethodPost, "/api/recipes/recommend", map[string]interface{}{"user_id": 7})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	require.Len(t, body["data"], 1)
}

func TestRecommendRecipes_RequiresUserID(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/recipes/recommend", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
