package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"OpportunityScout/internal/model"
)

// HTTPProducer implements Producer against a REST research service.
type HTTPProducer struct {
	ProducerName     string
	ScenarioCategory model.Category
	BaseURL          string
	APIKey           string
	Client           *http.Client
}

// NewHTTPProducer creates a producer for one category with optional proxy
// support.
func NewHTTPProducer(name string, category model.Category, baseURL, apiKey, proxyURL string) *HTTPProducer {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPProducer{
		ProducerName:     name,
		ScenarioCategory: category,
		BaseURL:          baseURL,
		APIKey:           apiKey,
		Client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
	}
}

func (p *HTTPProducer) Name() string             { return p.ProducerName }
func (p *HTTPProducer) Category() model.Category { return p.ScenarioCategory }

// researchRequest is the JSON body sent to the research service.
type researchRequest struct {
	Category       string `json:"category"`
	TimeWindowDays int    `json:"time_window_days"`
}

// Produce calls the research service and decodes its candidate scenarios.
// Candidates whose category disagrees with the producer's are coerced, since a
// producer speaks for exactly one category.
func (p *HTTPProducer) Produce(ctx context.Context, timeWindowDays int) ([]model.RawScenario, error) {
	body, err := json.Marshal(researchRequest{
		Category:       string(p.ScenarioCategory),
		TimeWindowDays: timeWindowDays,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal research request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/research", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create research request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("research request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("research service: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Scenarios []model.RawScenario `json:"scenarios"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode research response: %w", err)
	}

	for i := range result.Scenarios {
		result.Scenarios[i].Category = p.ScenarioCategory
	}
	return result.Scenarios, nil
}
