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

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penny-vault/import-tikr/common"
	"github.com/penny-vault/import-tikr/observability/opentelemetry"
	"github.com/penny-vault/import-tikr/quotes"
	"github.com/penny-vault/import-tikr/statements"
	"github.com/penny-vault/import-tikr/tikr"
	"github.com/penny-vault/import-tikr/workbook"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export TICKER...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Export valuation workbooks for the given tickers",
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		common.SetupCache()

		if viper.GetString("otlp.endpoint") != "" {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Error().Err(err).Msg("could not initialize opentelemetry")
			} else {
				defer shutdown(context.Background()) //nolint:errcheck
			}
		}

		runID := uuid.New().String()
		subLog := log.With().Str("RunID", runID).Logger()
		subLog.Info().Strs("Tickers", args).Msg("starting export run")

		outputDir := viper.GetString("output.dir")
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			subLog.Fatal().Err(err).Str("Dir", outputDir).Msg("cannot create output directory")
		}

		tokens := tikr.NewBrowserTokenSource(
			viper.GetString("tikr.email"),
			viper.GetString("tikr.password"),
			viper.GetString("tikr.token_path"),
		)
		client := tikr.NewClient(tokens)

		ctx := context.Background()
		succeeded := 0
		for _, ticker := range args {
			ticker = strings.ToUpper(strings.TrimSpace(ticker))
			if err := exportTicker(ctx, client, ticker, outputDir); err != nil {
				subLog.Error().Err(err).Str("Ticker", ticker).Msg("export failed")
				continue
			}
			succeeded++
		}

		subLog.Info().Int("Succeeded", succeeded).Int("Requested", len(args)).Msg("export run complete")
		if succeeded == 0 {
			os.Exit(1)
		}
	},
}

// exportTicker runs the full pipeline for one company: fetch, normalize,
// derive metrics, assemble the workbook, project the valuation inputs, and
// save. A failure anywhere leaves no partial output file for the ticker.
func exportTicker(ctx context.Context, client *tikr.Client, ticker string, outputDir string) error {
	subLog := log.With().Str("Ticker", ticker).Logger()
	subLog.Info().Msg("exporting company")

	company, err := client.Lookup(ctx, ticker)
	if err != nil {
		return err
	}

	feed, err := client.Financials(ctx, company.TradingID, company.CompanyID)
	if err != nil {
		return err
	}

	set := statements.Normalize(feed.Dates, feed.Data)
	set = statements.AnnotateYoY(set)
	stc := statements.ComputeSalesToCapital(set.Income, set.Balance)
	if stc != nil {
		subLog.Info().Float64("Ratio", stc.Ratio).Msg("computed sales-to-capital")
	}

	if marketData, err := tikr.MarketData(feed, ticker); err != nil {
		subLog.Warn().Err(err).Msg("market data unavailable")
	} else {
		for label, value := range marketData {
			subLog.Debug().Str(label, value).Msg("market data")
		}
	}

	quote := quotes.Fetch(ctx, ticker)

	wb, err := workbook.Assemble(ticker, set, quote, stc)
	if err != nil {
		return err
	}

	templatePath := viper.GetString("template.path")
	if _, err := os.Stat(templatePath); err != nil {
		subLog.Warn().Str("Template", templatePath).Msg("valuation template not found; skipping merge")
	} else if err := wb.MergeTemplate(templatePath); err != nil {
		subLog.Warn().Err(err).Msg("could not merge valuation template")
	} else {
		wb.Project(stc, quote)
	}

	outputFile := filepath.Join(outputDir,
		fmt.Sprintf("%s_%s.xlsx", ticker, time.Now().Format("2006-01-02")))
	return wb.SaveAs(outputFile)
}
