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
	"fmt"
	"strconv"

	"github.com/penny-vault/import-tikr/statements"
	"github.com/rs/zerolog/log"
)

// feed items carrying point-in-time market metrics for the latest period
const (
	itemDilutedShares = 342
	itemBasicShares   = 3217
	itemDilutedEPS    = 142
	itemBasicEPS      = 9
	itemPERatio       = 4053
	itemPERatioAlt    = 4419
)

// MarketData derives a labelled market snapshot from the latest fiscal period
// of an already-fetched feed: shares outstanding, LTM EPS, LTM P/E, and a
// price and market cap calculated from them. Missing items simply leave
// their labels out of the map.
func MarketData(feed *FeedResponse, ticker string) (map[string]string, error) {
	subLog := log.With().Str("Ticker", ticker).Logger()
	subLog.Info().Msg("extracting market data from latest fiscal period")

	if len(feed.Dates) == 0 {
		return nil, fmt.Errorf("%w: no fiscal periods", ErrInvalidResponse)
	}

	latest := feed.Dates[len(feed.Dates)-1]
	items := make(map[int]statements.RawDataPoint, len(feed.Data))
	for _, dp := range feed.Data {
		if dp.PeriodID != latest.PeriodID || dp.Value == statements.AccessDenied {
			continue
		}
		if _, ok := items[dp.ItemID]; !ok {
			items[dp.ItemID] = dp
		}
	}

	marketData := make(map[string]string)

	shares, sharesOK := firstItem(items, itemDilutedShares, itemBasicShares)
	if sharesOK {
		marketData["Shares Outstanding"] = fmt.Sprintf("%sM shares", groupDigits(shares))
	}

	eps, epsOK := firstItem(items, itemDilutedEPS, itemBasicEPS)
	if epsOK {
		marketData["LTM EPS"] = fmt.Sprintf("$%.2f", eps)
	}

	pe, peOK := firstItem(items, itemPERatio, itemPERatioAlt)
	if peOK {
		marketData["LTM P/E Ratio"] = fmt.Sprintf("%.2f", pe)
	}

	if peOK && epsOK {
		price := pe * eps
		marketData["Current Price (Calculated)"] = fmt.Sprintf("$%.2f", price)
		if sharesOK {
			// shares are reported in millions so this lands in billions
			marketCap := price * shares / 1000
			marketData["Market Cap (Calculated)"] = fmt.Sprintf("$%.1fB", marketCap)
		}
	} else {
		marketData["Current Price"] = "Not available - missing P/E or EPS data"
	}

	marketData["Data Period"] = fmt.Sprintf("%s LTM", latest.CalendarYear)
	marketData["Source"] = "TIKR Financial + Calculated"
	marketData["Calculation Method"] = "P/E Ratio x LTM EPS"

	subLog.Info().Int("Fields", len(marketData)).Msg("extracted market data")
	return marketData, nil
}

func firstItem(items map[int]statements.RawDataPoint, itemIDs ...int) (float64, bool) {
	for _, id := range itemIDs {
		if dp, ok := items[id]; ok {
			if v, err := strconv.ParseFloat(dp.Value, 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// groupDigits formats a value with thousands separators and no decimals
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
