package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestClientDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/detect":
			if r.Method != http.MethodPost {
				t.Errorf("detect method = %s", r.Method)
			}
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req["image_url"] == "" {
				t.Error("missing image_url in request")
			}
			json.NewEncoder(w).Encode(DetectResponse{
				ModelVersion: "yolov8-2026.1",
				Detections: []RawDetection{
					{BboxX1: 10, BboxY1: 20, BboxX2: 60, BboxY2: 90, ClassID: 1, ClassName: "Loose Joint (Faulty)", Confidence: 0.92},
					{BboxX1: 100, BboxY1: 40, BboxX2: 150, BboxY2: 110, ClassID: 3, ClassName: "Point Overload (Faulty)", Confidence: 0.71},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger(t))
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}

	out, err := c.Detect(ctx, "http://example.com/thermal.jpg")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(out.Detections) != 2 {
		t.Fatalf("detections = %d, want 2", len(out.Detections))
	}
	if out.ModelVersion != "yolov8-2026.1" {
		t.Fatalf("model version = %q", out.ModelVersion)
	}
	if out.Detections[0].ClassName != "Loose Joint (Faulty)" {
		t.Fatalf("first detection class = %q", out.Detections[0].ClassName)
	}
}

func TestClientDetectErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger(t))
	if _, err := c.Detect(context.Background(), "http://example.com/x.jpg"); err == nil {
		t.Fatal("Detect on 503 returned nil error")
	}
	if err := c.Health(context.Background()); err == nil {
		t.Fatal("Health on 503 returned nil error")
	}
}
