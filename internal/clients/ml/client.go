package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

// RawDetection is one box as the inference service returns it. The caller
// maps these into annotation roots; this package treats the model as a black
// box.
type RawDetection struct {
	BboxX1     int     `json:"bbox_x1"`
	BboxY1     int     `json:"bbox_y1"`
	BboxX2     int     `json:"bbox_x2"`
	BboxY2     int     `json:"bbox_y2"`
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

type DetectResponse struct {
	Detections   []RawDetection `json:"detections"`
	ModelVersion string         `json:"model_version"`
}

type Client interface {
	Health(ctx context.Context) error
	Detect(ctx context.Context, imageURL string) (*DetectResponse, error)
}

type client struct {
	baseURL string
	httpc   *http.Client
	log     *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, baseLog *logger.Logger) Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     baseLog.With("client", "ml"),
	}
}

func (c *client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("ml health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml health check: status %d", resp.StatusCode)
	}
	return nil
}

func (c *client) Detect(ctx context.Context, imageURL string) (*DetectResponse, error) {
	payload, err := json.Marshal(map[string]string{"image_url": imageURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ml detect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ml detect: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out DetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ml detect: decode response: %w", err)
	}
	c.log.Info("Detection run finished",
		"detections", len(out.Detections), "model_version", out.ModelVersion, "took", time.Since(start))
	return &out, nil
}
