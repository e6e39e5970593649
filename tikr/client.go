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

package tikr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/penny-vault/import-tikr/observability/opentelemetry"
	"github.com/penny-vault/import-tikr/statements"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var financialsURL = "https://oljizlzlsa.execute-api.us-east-1.amazonaws.com/prod/fin"

// feedAttempts bounds the fetch-refresh-retry cycle for one company
const feedAttempts = 2

// FeedResponse is the raw financials payload for one company: the list of
// fiscal periods (oldest first) and every data point across all of them
type FeedResponse struct {
	Dates []statements.FiscalPeriod `json:"dates"`
	Data  []statements.RawDataPoint `json:"data"`
}

type financialsRequest struct {
	Auth      string `json:"auth"`
	TradingID int    `json:"tid"`
	CompanyID int    `json:"cid"`
	Period    string `json:"p"`
	ReportID  int    `json:"repid"`
	Version   string `json:"v"`
}

// Client talks to the TIKR data platform. It holds no per-company state so a
// single client can serve many exports.
type Client struct {
	tokens TokenSource
}

func NewClient(tokens TokenSource) *Client {
	return &Client{tokens: tokens}
}

// Financials fetches the full statement history for a company. An invalid
// response or server error triggers one token refresh and retry; after the
// retry budget is exhausted the error propagates to the caller.
func (c *Client) Financials(ctx context.Context, tradingID int, companyID int) (*FeedResponse, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tikr.Financials")
	defer span.End()
	span.SetAttributes(
		attribute.Int("TradingID", tradingID),
		attribute.Int("CompanyID", companyID),
	)

	subLog := log.With().Int("TradingID", tradingID).Int("CompanyID", companyID).Logger()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no access token")
		return nil, err
	}

	for attempt := 0; attempt < feedAttempts; attempt++ {
		payload, err := json.Marshal(financialsRequest{
			Auth:      token,
			TradingID: tradingID,
			CompanyID: companyID,
			Period:    "1",
			ReportID:  1,
			Version:   "v1",
		})
		if err != nil {
			return nil, err
		}

		feed, err := postFinancials(ctx, payload)
		if err == nil {
			subLog.Info().Int("Periods", len(feed.Dates)).Int("DataPoints", len(feed.Data)).
				Msg("fetched financial data")
			return feed, nil
		}

		if attempt < feedAttempts-1 {
			subLog.Warn().Err(err).Msg("invalid response or server error; regenerating access token")
			token, err = c.tokens.Refresh(ctx)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "token refresh failed")
				return nil, err
			}
			continue
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "financials fetch failed")
		subLog.Error().Err(err).Msg("could not fetch financial data after token regeneration")
		return nil, err
	}

	return nil, ErrInvalidResponse
}

func postFinancials(ctx context.Context, payload []byte) (*FeedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, financialsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://app.tikr.com")
	req.Header.Set("Referer", "https://app.tikr.com/")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// an expired token yields a well-formed body without a dates array
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, err)
	}
	if _, ok := probe["dates"]; !ok {
		return nil, fmt.Errorf("%w: no dates array", ErrInvalidResponse)
	}

	feed := &FeedResponse{}
	if err := json.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, err)
	}
	return feed, nil
}
