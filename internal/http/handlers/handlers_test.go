// README: Handler tests for request validation and error mapping.
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"homecall/internal/http/handlers"
	"homecall/internal/modules/dispatch"
	"homecall/internal/modules/history"
)

// Validation happens before any dependency is touched, so nil-wired services
// are safe for these paths.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	dispatchSvc := dispatch.NewService(nil, nil, nil, nil, nil, nil, nil, 5000)
	historySvc := history.NewService(nil, nil, nil, nil, nil, nil, nil)

	orderHandler := handlers.NewOrderHandler(dispatchSvc, nil)
	historyHandler := handlers.NewHistoryHandler(historySvc)

	r.POST("/api/v1/order/create-order", orderHandler.Create)
	r.POST("/api/v1/order-history/accept-order", historyHandler.Accept)
	r.POST("/api/v1/order-history/verify-start-order", historyHandler.VerifyStart)
	return r
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	} else {
		buf.WriteString("{not json")
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderInvalidJSON(t *testing.T) {
	r := newTestRouter()
	if w := post(r, "/api/v1/order/create-order", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCreateOrderMissingFieldsListed(t *testing.T) {
	r := newTestRouter()
	w := post(r, "/api/v1/order/create-order", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Fields) == 0 {
		t.Fatalf("expected missing fields in response, got %q", w.Body.String())
	}
}

func TestAcceptMissingFields(t *testing.T) {
	r := newTestRouter()
	w := post(r, "/api/v1/order-history/accept-order", map[string]any{"orderId": "o1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestVerifyStartMissingOTP(t *testing.T) {
	r := newTestRouter()
	w := post(r, "/api/v1/order-history/verify-start-order", map[string]any{"orderHistoryId": "h1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
