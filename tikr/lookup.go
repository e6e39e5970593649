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
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/penny-vault/import-tikr/common"
	"github.com/penny-vault/import-tikr/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// the search index is public; these credentials ship in the TIKR web app
var searchURL = "https://tjpay1dyt8-3.algolianet.com/1/indexes/tikr-feb/query" +
	"?x-algolia-agent=Algolia%20for%20JavaScript%20(3.35.1)%3B%20Browser%20(lite)" +
	"&x-algolia-application-id=TJPAY1DYT8" +
	"&x-algolia-api-key=d88ea2aa3c22293c96736f5ceb5bab4e"

// Company are the platform identifiers needed to request financials
type Company struct {
	Ticker    string `json:"ticker"`
	TradingID int    `json:"tradingitemid"`
	CompanyID int    `json:"companyid"`
}

type searchResponse struct {
	Hits []Company `json:"hits"`
}

// Lookup resolves a ticker to its trading and company IDs via the platform's
// search index. Results are cached so repeated exports skip the round trip.
func (c *Client) Lookup(ctx context.Context, ticker string) (*Company, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tikr.Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("Ticker", ticker))

	subLog := log.With().Str("Ticker", ticker).Logger()

	cacheKey := common.CacheKey("tikr-lookup", ticker)
	if cached, err := common.CacheGet(cacheKey); err == nil && len(cached) > 0 {
		company := &Company{}
		if err := json.Unmarshal(cached, company); err == nil {
			subLog.Debug().Msg("company lookup served from cache")
			return company, nil
		}
	}

	body := fmt.Sprintf(`{"params":"query=%s&distinct=2"}`, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://app.tikr.com")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		subLog.Error().Err(err).Msg("error searching for company")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("company search returned invalid status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result := searchResponse{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	if len(result.Hits) == 0 {
		subLog.Warn().Msg("company not found")
		return nil, ErrCompanyNotFound
	}

	company := result.Hits[0]
	company.Ticker = ticker
	subLog.Info().Int("TradingID", company.TradingID).Int("CompanyID", company.CompanyID).
		Msg("found company")

	if encoded, err := json.Marshal(&company); err == nil {
		if err := common.CacheSet(cacheKey, encoded); err != nil {
			subLog.Warn().Err(err).Msg("could not cache company lookup")
		}
	}

	return &company, nil
}
