package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// HTTPProbe queries a JSON metrics endpoint and halts when any degradation
// rule matches. An unreachable or malformed endpoint also halts: unknown
// infrastructure state is treated as unsafe.
type HTTPProbe struct {
	client *http.Client
	url    string
	rules  []Rule
}

// NewHTTPProbe creates an HTTP metrics probe. Rules must be validated by the
// caller beforehand.
func NewHTTPProbe(url string, timeout time.Duration, rules ...Rule) *HTTPProbe {
	return &HTTPProbe{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		url:   url,
		rules: rules,
	}
}

// Probe returns the probe callable for this endpoint
func (p *HTTPProbe) Probe() model.Probe {
	return p.check
}

func (p *HTTPProbe) check(ctx context.Context) model.HealthSignal {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return model.HaltSignal(fmt.Sprintf("invalid metrics request: %v", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return model.HaltSignal(fmt.Sprintf("metrics endpoint unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.HaltSignal(fmt.Sprintf("metrics endpoint returned status %d", resp.StatusCode))
	}

	// Limit to 1MB
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return model.HaltSignal(fmt.Sprintf("failed to read metrics response: %v", err))
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.HaltSignal(fmt.Sprintf("metrics response is not valid JSON: %v", err))
	}

	for _, rule := range p.rules {
		matched, err := rule.evaluate(doc)
		if err != nil {
			return model.HaltSignal(fmt.Sprintf("rule %s failed to evaluate: %v", rule.Name, err))
		}
		if matched {
			return model.HaltSignal(fmt.Sprintf("%s: %s %s %v", rule.Name, rule.Expression, rule.Operator, rule.Threshold))
		}
	}

	return model.OK()
}
