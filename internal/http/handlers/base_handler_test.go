// README: Tests for the sentinel-error to HTTP-status mapping.
package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"homecall/internal/modules/history"
)

// Wrong-lifecycle-state is the client's sequencing mistake (400), not a lost
// race (409); clients branch on that distinction.
func TestWriteHistoryErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{history.ErrBadRequest, http.StatusBadRequest},
		{history.ErrInvalidOTP, http.StatusBadRequest},
		{history.ErrExpiredOTP, http.StatusBadRequest},
		{history.ErrInvalidState, http.StatusBadRequest},
		{history.ErrNotFound, http.StatusNotFound},
		{history.ErrConflict, http.StatusConflict},
		{errors.New("pool exhausted"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeHistoryError(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("writeHistoryError(%v) = %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}
