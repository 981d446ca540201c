package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Classifier assigns a category id to free-form profile text. The actual
// model lives in a separate vectorization service; this package only adapts
// it for the engine.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// HTTPClassifier calls the vectorization service over HTTP.
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClassifier creates a classifier client against the given base URL.
func NewHTTPClassifier(baseURL string) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Classify posts the text and returns the category id.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to encode classify request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build classify request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classify request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classify request returned status %d", resp.StatusCode)
	}

	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode classify response: %v", err)
	}
	if body.Category == "" {
		return "", fmt.Errorf("classifier returned empty category")
	}

	return body.Category, nil
}
