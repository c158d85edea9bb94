// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package contents

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ServerSettings is the mutable connection record shared by all drive
// operations. The owning layer may change BaseURL, Token or QueryParams at
// any time, for example when the user points the drive at a different
// server; the change applies to every operation started afterwards.
//
// Each operation copies the settings once at call start, so a request
// already in flight never observes a concurrent mutation. The record itself
// is not locked: mutating it is the owner's single-goroutine concern.
type ServerSettings struct {
	// BaseURL is the absolute URL of the remote Jupyter server. Every
	// network operation fails with ErrNoBaseURL while it is empty.
	BaseURL string

	// Token is sent as "Authorization: token <Token>" when non-empty
	Token string

	// QueryParams are appended to every request, e.g. an access token the
	// remote server expects in the query string
	QueryParams url.Values

	// Client performs the requests. Its cookie Jar is where the download
	// URL builder looks for the anti-forgery cookie.
	Client *http.Client
}

// NewServerSettings creates settings for the given server URL and token.
func NewServerSettings(baseURL, token string) *ServerSettings {
	return &ServerSettings{
		BaseURL:     baseURL,
		Token:       token,
		QueryParams: url.Values{},
		Client:      http.DefaultClient,
	}
}

// settingsSnapshot is the immutable per-call copy of ServerSettings.
type settingsSnapshot struct {
	baseURL     string
	token       string
	queryParams url.Values
	client      *http.Client
}

func (s *ServerSettings) snapshot() (settingsSnapshot, error) {
	snap := settingsSnapshot{
		baseURL: strings.TrimSpace(s.BaseURL),
		token:   s.Token,
		client:  s.Client,
	}
	if snap.baseURL == "" {
		return settingsSnapshot{}, ErrNoBaseURL
	}
	if snap.client == nil {
		snap.client = http.DefaultClient
	}
	if len(s.QueryParams) > 0 {
		snap.queryParams = url.Values{}
		for key, values := range s.QueryParams {
			for _, v := range values {
				snap.queryParams.Add(key, v)
			}
		}
	}
	return snap, nil
}

// authorize adds the authentication header to a request.
func (s settingsSnapshot) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", s.token))
	}
}

// xsrfToken returns the anti-forgery token stored in the client's cookie
// jar for the server origin, or "" when absent.
func (s settingsSnapshot) xsrfToken() string {
	if s.client == nil || s.client.Jar == nil {
		return ""
	}
	origin, err := url.Parse(s.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range s.client.Jar.Cookies(origin) {
		if cookie.Name == "_xsrf" {
			return cookie.Value
		}
	}
	return ""
}
