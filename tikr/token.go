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
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/goccy/go-json"
	"github.com/penny-vault/import-tikr/common"
	"github.com/rs/zerolog/log"
)

const (
	loginURL    = "https://app.tikr.com/login"
	screenerURL = "https://app.tikr.com/screener?sid=1"

	// token capture watches for the screener's POST to this endpoint; its
	// request body carries the bearer token in the auth field
	tokenRequestMarker = "amazonaws.com/prod/fs"

	tokenCaptureTimeout = 3 * time.Minute
)

// TokenSource supplies the opaque bearer token the financials endpoint
// requires. Token returns a cached token when one exists; Refresh always
// performs a fresh login.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// BrowserTokenSource acquires tokens by driving a headless browser through
// the platform's login flow and sniffing the screener's API traffic. Captured
// tokens are persisted to TokenPath and the shared cache so later runs skip
// the browser entirely.
type BrowserTokenSource struct {
	Email    string
	Password string

	// TokenPath is where the captured token is persisted between runs
	TokenPath string

	// ShowBrowser disables headless mode for debugging login problems
	ShowBrowser bool

	token string
}

func NewBrowserTokenSource(email string, password string, tokenPath string) *BrowserTokenSource {
	return &BrowserTokenSource{
		Email:     email,
		Password:  password,
		TokenPath: tokenPath,
	}
}

func (b *BrowserTokenSource) Token(ctx context.Context) (string, error) {
	if b.token != "" {
		return b.token, nil
	}

	if b.TokenPath != "" {
		if raw, err := os.ReadFile(b.TokenPath); err == nil {
			token := strings.TrimSpace(string(raw))
			if token != "" {
				b.token = token
				return token, nil
			}
		}
	}

	if cached, err := common.CacheGet(common.CacheKey("tikr-token")); err == nil && len(cached) > 0 {
		b.token = strings.TrimSpace(string(cached))
		return b.token, nil
	}

	log.Info().Msg("no access token found; generating new token")
	return b.Refresh(ctx)
}

func (b *BrowserTokenSource) Refresh(ctx context.Context) (string, error) {
	if b.Email == "" || b.Password == "" {
		return "", ErrMissingCreds
	}

	token, err := b.capture(ctx)
	if err != nil {
		return "", err
	}

	b.token = token
	if b.TokenPath != "" {
		if err := os.WriteFile(b.TokenPath, []byte(token), 0600); err != nil {
			log.Warn().Err(err).Str("TokenPath", b.TokenPath).Msg("could not persist access token")
		} else {
			log.Info().Msg("access token saved")
		}
	}
	if err := common.CacheSet(common.CacheKey("tikr-token"), []byte(token)); err != nil {
		log.Warn().Err(err).Msg("could not cache access token")
	}

	return token, nil
}

// capture logs into the platform, opens the screener, triggers a fetch, and
// extracts the bearer token from the resulting API request body
func (b *BrowserTokenSource) capture(ctx context.Context) (string, error) {
	log.Info().Msg("generating access token")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !b.ShowBrowser),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, tokenCaptureTimeout)
	defer cancelTimeout()

	tokenCh := make(chan string, 1)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		reqEv, ok := ev.(*network.EventRequestWillBeSent)
		if !ok || reqEv.Request.Method != "POST" || !strings.Contains(reqEv.Request.URL, tokenRequestMarker) {
			return
		}
		requestID := reqEv.RequestID
		go func() {
			c := chromedp.FromContext(taskCtx)
			body, err := network.GetRequestPostData(requestID).Do(cdp.WithExecutor(taskCtx, c.Target))
			if err != nil {
				log.Debug().Err(err).Msg("could not read screener request body")
				return
			}
			var payload struct {
				Auth string `json:"auth"`
			}
			if err := json.Unmarshal([]byte(body), &payload); err != nil || payload.Auth == "" {
				return
			}
			select {
			case tokenCh <- payload.Auth:
			default:
			}
		}()
	})

	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(`//input[@type="email"]`),
		chromedp.SendKeys(`//input[@type="email"]`, b.Email),
		chromedp.SendKeys(`//input[@type="password"]`, b.Password),
		chromedp.Click(`//button/span`),
		// login is complete once the welcome banner renders
		chromedp.WaitVisible(`//*[contains(text(), "Welcome to TIKR")]`),
		chromedp.Navigate(screenerURL),
		chromedp.WaitVisible(`//button/span[contains(text(), "Fetch Screen")]`),
		chromedp.Click(`//button/span[contains(text(), "Fetch Screen")]/..`),
	)
	if err != nil {
		log.Error().Err(err).Msg("error generating access token")
		return "", err
	}

	select {
	case token := <-tokenCh:
		log.Info().Msg("successfully extracted access token")
		return token, nil
	case <-taskCtx.Done():
		return "", ErrTokenNotCaptured
	}
}
