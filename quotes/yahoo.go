// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package quotes retrieves real-time market snapshots from the Yahoo
// Finance quote API. Snapshots are label -> formatted-string maps so
// they drop straight into a spreadsheet column.
package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/penny-vault/import-tikr/observability/opentelemetry"
)

var quoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"

type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  any           `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol             string  `json:"symbol"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	SharesOutstanding  float64 `json:"sharesOutstanding"`
	MarketCap          float64 `json:"marketCap"`
	TrailingPE         float64 `json:"trailingPE"`
	EpsTrailingTwelve  float64 `json:"epsTrailingTwelveMonths"`
	FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
	RegularMarketVol   float64 `json:"regularMarketVolume"`
	FullExchangeName   string  `json:"fullExchangeName"`
	Currency           string  `json:"currency"`
}

// Snapshot is an ordered real-time quote: Labels preserves insertion order
// for deterministic sheet layout, Fields maps each label to its formatted
// value.
type Snapshot struct {
	Labels []string
	Fields map[string]string
}

func (s *Snapshot) add(label, value string) {
	if _, ok := s.Fields[label]; ok {
		return
	}
	s.Labels = append(s.Labels, label)
	s.Fields[label] = value
}

// Fetch retrieves a real-time quote for ticker. On any failure it logs a
// warning and returns a snapshot carrying an error marker so downstream
// sheet assembly still has something to write.
func Fetch(ctx context.Context, ticker string) *Snapshot {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "quotes.Fetch")
	defer span.End()

	subLog := log.With().Str("Ticker", ticker).Logger()
	subLog.Info().Msg("fetching yahoo finance quote")

	result, err := fetchQuote(ctx, ticker)
	if err != nil {
		subLog.Warn().Err(err).Msg("yahoo finance quote failed")
		return errorSnapshot(ticker, err)
	}

	snap := &Snapshot{Fields: make(map[string]string)}
	name := result.LongName
	if name == "" {
		name = result.ShortName
	}
	snap.add("Company Name", name)
	snap.add("Symbol", result.Symbol)
	snap.add("Current Price", fmt.Sprintf("$%.2f", result.RegularMarketPrice))
	if result.SharesOutstanding > 0 {
		snap.add("Shares Outstanding", groupDigits(result.SharesOutstanding))
	}
	if result.MarketCap > 0 {
		snap.add("Market Cap", fmt.Sprintf("$%s", groupDigits(result.MarketCap)))
	}
	if result.TrailingPE > 0 {
		snap.add("P/E Ratio (Trailing)", fmt.Sprintf("%.2f", result.TrailingPE))
	}
	if result.EpsTrailingTwelve != 0 {
		snap.add("EPS (TTM)", fmt.Sprintf("$%.2f", result.EpsTrailingTwelve))
	}
	if result.FiftyTwoWeekHigh > 0 {
		snap.add("52 Week High", fmt.Sprintf("$%.2f", result.FiftyTwoWeekHigh))
	}
	if result.FiftyTwoWeekLow > 0 {
		snap.add("52 Week Low", fmt.Sprintf("$%.2f", result.FiftyTwoWeekLow))
	}
	if result.RegularMarketVol > 0 {
		snap.add("Volume", groupDigits(result.RegularMarketVol))
	}
	if result.FullExchangeName != "" {
		snap.add("Exchange", result.FullExchangeName)
	}
	if result.Currency != "" {
		snap.add("Currency", result.Currency)
	}
	snap.add("Source", "Yahoo Finance")
	snap.add("Data Type", "Real-time quote")
	snap.add("Retrieved", time.Now().Format("2006-01-02 15:04:05"))

	subLog.Info().Int("Fields", len(snap.Fields)).Msg("fetched yahoo finance quote")
	return snap
}

func fetchQuote(ctx context.Context, ticker string) (*quoteResult, error) {
	reqURL := fmt.Sprintf("%s?symbols=%s", quoteURL, url.QueryEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo finance returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote results for %s", ticker)
	}
	return &parsed.QuoteResponse.Result[0], nil
}

func errorSnapshot(ticker string, err error) *Snapshot {
	snap := &Snapshot{Fields: make(map[string]string)}
	snap.add("Symbol", ticker)
	snap.add("Status", "Quote unavailable")
	snap.add("Error", err.Error())
	snap.add("Source", "Yahoo Finance")
	snap.add("Retrieved", time.Now().Format("2006-01-02 15:04:05"))
	return snap
}

func groupDigits(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
