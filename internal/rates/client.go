// Package rates fetches and caches daily exchange rates from the rate
// authority. Every rate is the amount of base currency (RUB) one unit of the
// foreign currency costs.
package rates

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/scaramou4/telegrambot2.0/internal/dates"
	"github.com/scaramou4/telegrambot2.0/internal/models"
)

var (
	// ErrNetwork indicates the rate authority was unreachable or timed out.
	ErrNetwork = errors.New("rate authority is unreachable")
	// ErrParse indicates the rate authority returned a malformed payload.
	ErrParse = errors.New("rate authority returned a malformed payload")
	// ErrEmptyResult indicates the payload carried no usable rate entries.
	ErrEmptyResult = errors.New("rate authority returned no usable rates")
)

// Client fetches daily rates from the authority. Historical quotes come from
// the XML daily document, the latest quotes from the JSON document.
type Client struct {
	xmlBaseURL  string
	jsonBaseURL string
	httpClient  *http.Client
}

// valCurs mirrors the authority's XML daily document.
type valCurs struct {
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

// latestResponse mirrors the authority's JSON latest-rates document.
type latestResponse struct {
	Date  string                 `json:"date"`
	Rates map[string]json.Number `json:"rates"`
}

// NewClient creates a rate authority client.
func NewClient(xmlBaseURL, jsonBaseURL string, timeout time.Duration) *Client {
	xmlTrimmed := strings.TrimRight(strings.TrimSpace(xmlBaseURL), "/")
	if xmlTrimmed == "" {
		xmlTrimmed = "https://www.cbr.ru"
	}
	jsonTrimmed := strings.TrimRight(strings.TrimSpace(jsonBaseURL), "/")
	if jsonTrimmed == "" {
		jsonTrimmed = "https://www.cbr-xml-daily.ru"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		xmlBaseURL:  xmlTrimmed,
		jsonBaseURL: jsonTrimmed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RatesFor fetches the official rates for the given canonical date.
func (c *Client) RatesFor(ctx context.Context, date string) (models.RateSnapshot, error) {
	endpoint := fmt.Sprintf("%s/scripts/XML_daily.asp?date_req=%s", c.xmlBaseURL, url.QueryEscape(date))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return models.RateSnapshot{}, err
	}
	defer func() { _ = body.Close() }()

	decoder := xml.NewDecoder(body)
	decoder.CharsetReader = charsetReader

	var payload valCurs
	if err := decoder.Decode(&payload); err != nil {
		return models.RateSnapshot{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	rates := make(map[string]decimal.Decimal, len(payload.Valutes))
	for _, v := range payload.Valutes {
		code := strings.ToUpper(strings.TrimSpace(v.CharCode))
		if code == "" {
			continue
		}
		value, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v.Value), ",", "."))
		if err != nil || !value.IsPositive() {
			continue
		}
		nominal, err := strconv.ParseInt(strings.TrimSpace(v.Nominal), 10, 64)
		if err != nil || nominal <= 0 {
			continue
		}
		rates[code] = value.Div(decimal.NewFromInt(nominal)).Round(models.RateScale)
	}
	if len(rates) == 0 {
		return models.RateSnapshot{}, ErrEmptyResult
	}

	return models.RateSnapshot{Date: date, Rates: rates}, nil
}

// Latest fetches the most recent published rates.
func (c *Client) Latest(ctx context.Context) (models.RateSnapshot, error) {
	endpoint := c.jsonBaseURL + "/latest.js"

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return models.RateSnapshot{}, err
	}
	defer func() { _ = body.Close() }()

	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var payload latestResponse
	if err := decoder.Decode(&payload); err != nil {
		return models.RateSnapshot{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	day, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return models.RateSnapshot{}, fmt.Errorf("%w: bad date %q", ErrParse, payload.Date)
	}

	rates := make(map[string]decimal.Decimal, len(payload.Rates))
	for code, raw := range payload.Rates {
		rate, err := decimal.NewFromString(raw.String())
		if err != nil || !rate.IsPositive() {
			continue
		}
		rates[strings.ToUpper(code)] = rate.Round(models.RateScale)
	}
	if len(rates) == 0 {
		return models.RateSnapshot{}, ErrEmptyResult
	}

	return models.RateSnapshot{Date: day.Format(dates.Layout), Rates: rates}, nil
}

// get issues the request and classifies transport-level failures.
func (c *Client) get(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	return resp.Body, nil
}

// charsetReader handles the windows-1251 encoding the XML document is
// published in.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8":
		return input, nil
	case "windows-1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}
