// Package cbr fetches official exchange rates published by the Central Bank of Russia.
package cbr

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Client fetches the daily rate sheet.
type Client struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
	maxRetries int
}

// NewClient creates a new CBR client. baseURL is usually https://www.cbr.ru/scripts.
func NewClient(baseURL string, delay time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      delay,
		maxRetries: maxRetries,
	}
}

type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

// FetchRates returns the rate of every currency in the sheet for date, keyed by ISO code.
// The rate is the ruble price of one unit.
func (c *Client) FetchRates(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/XML_daily.asp?date_req=%s", c.baseURL, date.Format("02/01/2006"))

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	return parseRates(body)
}

func parseRates(body []byte) (map[string]decimal.Decimal, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "windows-1251") {
			return charmap.Windows1251.NewDecoder().Reader(input), nil
		}
		return nil, fmt.Errorf("unsupported charset %s", charset)
	}

	var sheet valCurs
	if err := dec.Decode(&sheet); err != nil {
		return nil, fmt.Errorf("parsing CBR response: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(sheet.Valutes))
	for _, v := range sheet.Valutes {
		value, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(v.Value), ",", ".", 1))
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %w", v.CharCode, v.Value, err)
		}
		nominal, err := decimal.NewFromString(strings.TrimSpace(v.Nominal))
		if err != nil || nominal.IsZero() {
			return nil, fmt.Errorf("parsing %s nominal %q", v.CharCode, v.Nominal)
		}
		rates[v.CharCode] = value.Div(nominal)
	}
	return rates, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.delay
			if baseDelay == 0 {
				baseDelay = 5 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CBR request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("CBR request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CBR response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("CBR rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("CBR HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
