// Package nutrition looks up nutrition facts for natural language ingredient
// descriptions. Lookups never fail loudly: any problem talking to the upstream
// API is logged and reported as "no data".
package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

const naturalNutrientsPath = "/v2/natural/nutrients"

// Lookuper resolves a natural language query to summed nutrition facts. The
// boolean is false when no data is available.
type Lookuper interface {
	Lookup(ctx context.Context, query string) (Facts, bool)
}

// Config configures the Nutritionix client.
type Config struct {
	AppID    string
	AppKey   string
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Client calls the Nutritionix natural language nutrients endpoint.
type Client struct {
	http   *retryablehttp.Client
	config Config
}

var _ Lookuper = (*Client)(nil)

// NewClient builds a client with bounded timeout and retries.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = leveledLogger{entry: log.WithField("component", "nutrition_client")}

	return &Client{http: rc, config: cfg}
}

type naturalRequest struct {
	Query string `json:"query"`
}

type naturalResponse struct {
	Foods []struct {
		FoodName          string  `json:"food_name"`
		Calories          float64 `json:"nf_calories"`
		TotalFat          float64 `json:"nf_total_fat"`
		TotalCarbohydrate float64 `json:"nf_total_carbohydrate"`
		Protein           float64 `json:"nf_protein"`
	} `json:"foods"`
}

// Lookup sums the facts of every food item the API detects in query.
func (c *Client) Lookup(ctx context.Context, query string) (Facts, bool) {
	if strings.TrimSpace(query) == "" {
		return Facts{}, false
	}

	facts, err := c.fetch(ctx, query)
	if err != nil {
		log.WithError(err).WithField("query", query).Warn("Nutrition lookup failed, no data available")
		return Facts{}, false
	}
	return facts, true
}

func (c *Client) fetch(ctx context.Context, query string) (Facts, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, err := json.Marshal(naturalRequest{Query: query})
	if err != nil {
		return Facts{}, fmt.Errorf("encoding nutrition request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+naturalNutrientsPath, bytes.NewReader(body))
	if err != nil {
		return Facts{}, fmt.Errorf("creating nutrition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.config.AppID)
	req.Header.Set("x-app-key", c.config.AppKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Facts{}, fmt.Errorf("calling nutrition API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := expectStatus2xx(resp); err != nil {
		return Facts{}, err
	}

	var parsed naturalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Facts{}, fmt.Errorf("decoding nutrition response: %w", err)
	}

	var total Facts
	for _, food := range parsed.Foods {
		total = total.Add(Facts{
			Calories: food.Calories,
			Fat:      food.TotalFat,
			Carbs:    food.TotalCarbohydrate,
			Protein:  food.Protein,
		})
	}
	return total, nil
}

func expectStatus2xx(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nutrition API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Disabled is used when no API credentials are configured.
type Disabled struct{}

func (Disabled) Lookup(context.Context, string) (Facts, bool) {
	return Facts{}, false
}
