package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/resilience"
	"golang.org/x/time/rate"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	RequestsPerMinute  int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string) *Client {
	return NewWithOptions(baseURL, model, Options{})
}

func NewWithOptions(baseURL, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	perMinute := options.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
		executor:   options.ResilienceExecutor,
	}
}

type Suggester struct {
	client *Client
}

func NewSuggester(client *Client) *Suggester {
	return &Suggester{client: client}
}

// SuggestMapping asks the model to bind source columns to canonical fields.
// Proposed pairs naming an unknown column or field are dropped.
func (s *Suggester) SuggestMapping(
	ctx context.Context,
	entity domain.EntityType,
	columns, targets []string,
) (map[string]string, error) {
	if len(columns) == 0 || len(targets) == 0 {
		return nil, nil
	}

	if err := s.client.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	raw, err := s.client.generateJSON(ctx, "suggest", buildMappingPrompt(entity, columns, targets))
	if err != nil {
		return nil, err
	}

	var proposed map[string]string
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &proposed); err != nil {
		return nil, fmt.Errorf("parse mapping json: %w", err)
	}
	return filterMapping(proposed, columns, targets), nil
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama."+operation, call, classifySuggestError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama "+operation, err)
	}
	return strings.TrimSpace(response.Response), nil
}

func filterMapping(proposed map[string]string, columns, targets []string) map[string]string {
	columnSet := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		columnSet[column] = struct{}{}
	}
	targetSet := make(map[string]struct{}, len(targets))
	for _, field := range targets {
		targetSet[field] = struct{}{}
	}

	mapping := make(map[string]string)
	for column, field := range proposed {
		column = strings.ToLower(strings.TrimSpace(column))
		field = strings.ToLower(strings.TrimSpace(field))
		if _, ok := columnSet[column]; !ok {
			continue
		}
		if _, ok := targetSet[field]; !ok {
			continue
		}
		mapping[column] = field
	}
	if len(mapping) == 0 {
		return nil
	}
	return mapping
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
