package coindesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// legacyTimeLayout is the non-ISO layout the live feed serves in
// time.updated ("Jun 1, 2021 14:23:00 UTC"). time.updatedISO carries the
// RFC 3339 form, but not every mirror of the API includes it.
const legacyTimeLayout = "Jan 2, 2006 15:04:05 MST"

// Quote is the current BTC/USD exchange rate as reported by the feed.
// Rate stays a string at this layer: grouping separators are a locale
// concern the caller resolves.
type Quote struct {
	UpdatedAt time.Time `json:"updated_at"`
	Rate      string    `json:"rate"`
	Currency  string    `json:"currency"`
}

type currentPriceResponse struct {
	Time struct {
		Updated    string `json:"updated"`
		UpdatedISO string `json:"updatedISO"`
	} `json:"time"`
	BPI map[string]struct {
		Code string `json:"code"`
		Rate string `json:"rate"`
	} `json:"bpi"`
}

// CurrentPrice performs a single blocking GET against the current-price
// endpoint and extracts the USD rate and its update timestamp.
func (c *Client) CurrentPrice(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, http.NoBody)
	if err != nil {
		return Quote{}, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return Quote{}, fmt.Errorf("GET %s -> %d: %s", c.baseURL, res.StatusCode, string(b))
	}

	var body currentPriceResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("decoding current price response: %w", err)
	}

	usd, ok := body.BPI["USD"]
	if !ok || usd.Rate == "" {
		return Quote{}, fmt.Errorf("current price response missing bpi.USD.rate")
	}
	if body.Time.Updated == "" && body.Time.UpdatedISO == "" {
		return Quote{}, fmt.Errorf("current price response missing time.updated")
	}

	updated, err := parseUpdated(body.Time.Updated, body.Time.UpdatedISO)
	if err != nil {
		return Quote{}, fmt.Errorf("decoding time.updated: %w", err)
	}

	return Quote{UpdatedAt: updated, Rate: usd.Rate, Currency: "USD"}, nil
}

func parseUpdated(updated, updatedISO string) (time.Time, error) {
	if updatedISO != "" {
		if t, err := time.Parse(time.RFC3339, updatedISO); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		return t, nil
	}
	return time.Parse(legacyTimeLayout, updated)
}
