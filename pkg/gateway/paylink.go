package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

// PaylinkClient talks to the external checkout backend that issues one-off
// payment links.
type PaylinkClient struct {
	baseURL string
	client  *http.Client
}

// NewPaylinkClient constructs a client for the given backend base URL.
func NewPaylinkClient(baseURL string, timeout time.Duration) *PaylinkClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaylinkClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type createLinkRequest struct {
	Student string  `json:"alumno"`
	Concept string  `json:"concepto"`
	Amount  float64 `json:"importe"`
}

type createLinkResponse struct {
	URL string `json:"url"`
}

// CreateLink requests a checkout link for a student, concept and amount. The
// backend keys the eventual settlement by the student name it receives.
func (c *PaylinkClient) CreateLink(ctx context.Context, studentName, concept string, amount float64) (string, error) {
	body, err := json.Marshal(createLinkRequest{
		Student: studentName,
		Concept: concept,
		Amount:  amount,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode payment link request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crear-enlace", bytes.NewReader(body))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build payment link request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", appErrors.Clone(appErrors.ErrGateway, fmt.Sprintf("payment gateway returned status %d", resp.StatusCode))
	}

	var decoded createLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "failed to decode payment gateway response")
	}
	if decoded.URL == "" {
		return "", appErrors.Clone(appErrors.ErrGateway, "payment gateway returned no link")
	}
	return decoded.URL, nil
}
