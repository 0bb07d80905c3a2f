package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL - портал открытых данных data.gov.in.
	DefaultBaseURL = "https://api.data.gov.in"
	// DefaultResource - ресурс Agmarknet с ежедневными ценами мандей.
	DefaultResource = "9ef842fd-551f-497c-8069-14353d9e86c0"
	// PriceUnit - единица цены в Agmarknet.
	PriceUnit = "INR/Quintal"

	rawRecordsLimit = 5
)

// ErrNoData возвращается, если по выбранным штату и культуре нет записей.
var ErrNoData = errors.New("no data available for this selection")

// Record - одна запись Agmarknet.
type Record struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety,omitempty"`
	ArrivalDate string `json:"arrival_date,omitempty"`
	MinPrice    string `json:"min_price,omitempty"`
	MaxPrice    string `json:"max_price,omitempty"`
	ModalPrice  string `json:"modal_price"`
}

// Analysis - сводка по ценам.
type Analysis struct {
	AveragePrice       float64 `json:"average_price"`
	HighestPrice       string  `json:"highest_price"`
	BestMarketLocation string  `json:"best_market_location"`
	PriceUnit          string  `json:"price_unit"`
}

// Report - ответ для клиента.
type Report struct {
	Commodity string   `json:"commodity"`
	Analysis  Analysis `json:"analysis"`
	RawData   []Record `json:"raw_data"`
}

// Summary - короткое описание цены для промпта советника.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s %s average (best %s %s at %s)",
		decimal.NewFromFloat(r.Analysis.AveragePrice).StringFixed(2), PriceUnit,
		r.Analysis.HighestPrice, PriceUnit, r.Analysis.BestMarketLocation)
}

// Client ходит в Agmarknet.
type Client struct {
	baseURL  string
	resource string
	apiKey   string
	http     *http.Client
}

// NewClient создает клиента Agmarknet.
func NewClient(baseURL, resource, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if resource == "" {
		resource = DefaultResource
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		resource: resource,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Prices запрашивает записи по штату и культуре и считает сводку.
func (c *Client) Prices(ctx context.Context, state, commodity string) (*Report, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	q.Set("filters[state]", state)
	q.Set("filters[commodity]", commodity)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/resource/"+c.resource+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market request failed: status %d", resp.StatusCode)
	}

	var body struct {
		Records []Record `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode market response: %w", err)
	}

	analysis, err := Analyze(body.Records)
	if err != nil {
		return nil, err
	}

	raw := body.Records
	if len(raw) > rawRecordsLimit {
		raw = raw[:rawRecordsLimit]
	}
	return &Report{Commodity: commodity, Analysis: *analysis, RawData: raw}, nil
}

// Analyze считает среднюю модальную цену (2 знака) и рынок с наибольшей ценой.
// При равных ценах выигрывает первая запись.
func Analyze(records []Record) (*Analysis, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	sum := decimal.Zero
	var (
		best      Record
		bestPrice decimal.Decimal
	)
	for i, r := range records {
		price, err := decimal.NewFromString(strings.TrimSpace(r.ModalPrice))
		if err != nil {
			return nil, fmt.Errorf("invalid modal price %q: %w", r.ModalPrice, err)
		}
		sum = sum.Add(price)
		if i == 0 || price.GreaterThan(bestPrice) {
			best, bestPrice = r, price
		}
	}

	avg := sum.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	return &Analysis{
		AveragePrice:       avg.InexactFloat64(),
		HighestPrice:       best.ModalPrice,
		BestMarketLocation: best.Market + ", " + best.District,
		PriceUnit:          PriceUnit,
	}, nil
}
