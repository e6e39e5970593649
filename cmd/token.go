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

	"github.com/penny-vault/import-tikr/common"
	"github.com/penny-vault/import-tikr/tikr"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showBrowser bool

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().BoolVar(&showBrowser, "show-browser", false, "run the login browser headed for debugging")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Force a fresh TIKR access token",
	Long: `Log in to TIKR with a headless browser, capture a new access token, and
write it to the configured token file. Normally tokens refresh on demand;
this command exists to pre-warm the token or debug login problems.`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		common.SetupCache()

		tokens := tikr.NewBrowserTokenSource(
			viper.GetString("tikr.email"),
			viper.GetString("tikr.password"),
			viper.GetString("tikr.token_path"),
		)
		tokens.ShowBrowser = showBrowser

		token, err := tokens.Refresh(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("token capture failed")
		}
		log.Info().Int("Length", len(token)).Str("File", viper.GetString("tikr.token_path")).
			Msg("captured access token")
	},
}
