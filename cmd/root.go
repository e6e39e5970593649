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
	"fmt"
	"os"

	"github.com/penny-vault/import-tikr/pkginfo"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// TIKR credentials
	viper.BindEnv("tikr.email", "TIKR_EMAIL")
	rootCmd.PersistentFlags().String("tikr-email", "", "TIKR account email")
	viper.BindPFlag("tikr.email", rootCmd.PersistentFlags().Lookup("tikr-email"))

	viper.BindEnv("tikr.password", "TIKR_PASSWORD")
	rootCmd.PersistentFlags().String("tikr-password", "", "TIKR account password")
	viper.BindPFlag("tikr.password", rootCmd.PersistentFlags().Lookup("tikr-password"))

	viper.BindEnv("tikr.token_path", "TIKR_TOKEN_PATH")
	rootCmd.PersistentFlags().String("tikr-token-path", "token.tmp", "File the access token is cached in")
	viper.BindPFlag("tikr.token_path", rootCmd.PersistentFlags().Lookup("tikr-token-path"))

	// Output
	viper.BindEnv("output.dir", "TIKR_OUTPUT_DIR")
	rootCmd.PersistentFlags().String("output-dir", "output", "Directory workbooks are written to")
	viper.BindPFlag("output.dir", rootCmd.PersistentFlags().Lookup("output-dir"))

	viper.BindEnv("template.path", "TIKR_TEMPLATE_PATH")
	rootCmd.PersistentFlags().String("template-path", "static/Valuation Base.xlsx", "Valuation template workbook")
	viper.BindPFlag("template.path", rootCmd.PersistentFlags().Lookup("template-path"))

	// Logging configuration
	viper.BindEnv("log.level", "TIKR_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "TIKR_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "TIKR_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", true, "Print logs in a human friendly format")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Cache
	rootCmd.PersistentFlags().Int("cache-local-size", 128, "Number of entries in the local LRU cache")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-local-size"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	rootCmd.PersistentFlags().String("cache-redis-url", "", "Redis connection string; if blank only the local cache is used")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("cache-redis-url"))

	rootCmd.PersistentFlags().Int("cache-ttl", 3600, "Seconds redis cache entries live for")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	// OpenTelemetry
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP trace collector endpoint; if blank tracing is disabled")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))

	rootCmd.PersistentFlags().Bool("otlp-http", false, "Use HTTP(s) instead of gRPC for the OTLP connection")
	viper.BindPFlag("otlp.http", rootCmd.PersistentFlags().Lookup("otlp-http"))
}

var rootCmd = &cobra.Command{
	Use:     "import-tikr",
	Version: pkginfo.Version,
	Short:   "Download financial statements from TIKR and build valuation workbooks",
	Long: `import-tikr fetches income statement, cash flow, and balance sheet data
for a set of tickers, derives free-cash-flow and sales-to-capital metrics,
and exports each company as an Excel workbook with a live valuation sheet.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
