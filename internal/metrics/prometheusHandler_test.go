package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHttpStatusRecorderCapturesStatus(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &HttpStatusRecorder{ResponseWriter: underlying, Status: 200}

	// handlers only see the recorder through the interface
	var w http.ResponseWriter = rec
	w.WriteHeader(http.StatusTooManyRequests)

	if rec.Status != http.StatusTooManyRequests {
		t.Fatalf("recorder kept status %d, want %d", rec.Status, http.StatusTooManyRequests)
	}
	if underlying.Code != http.StatusTooManyRequests {
		t.Fatalf("status not forwarded to the underlying writer: %d", underlying.Code)
	}
}

func TestHttpStatusRecorderDefaultsTo200(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &HttpStatusRecorder{ResponseWriter: underlying, Status: 200}

	var w http.ResponseWriter = rec
	if _, err := w.Write([]byte("ok")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if rec.Status != http.StatusOK {
		t.Fatalf("implicit status should stay 200, got %d", rec.Status)
	}
}
