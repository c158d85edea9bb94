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
	"net/url"
	"strings"
)

// encodeSegments percent-encodes each slash-separated segment of a
// POSIX-style path independently. A segment containing an encoded slash
// therefore round-trips as data, not as a path separator.
func encodeSegments(path string) string {
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

// joinURL joins the base URL with path parts, skipping empty parts and
// normalizing slashes. The parts must already be percent-encoded.
func joinURL(baseURL string, parts ...string) string {
	joined := strings.TrimRight(baseURL, "/")
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		joined += "/" + part
	}
	return joined
}

// withQuery appends the operation query and the connection-wide query
// parameters to a request URL.
func withQuery(requestURL string, query url.Values, snap settingsSnapshot) string {
	merged := url.Values{}
	for key, values := range query {
		for _, v := range values {
			merged.Add(key, v)
		}
	}
	for key, values := range snap.queryParams {
		for _, v := range values {
			merged.Add(key, v)
		}
	}
	if len(merged) == 0 {
		return requestURL
	}
	return requestURL + "?" + merged.Encode()
}

// boolFlag serializes the content switch the way the REST API expects it:
// the literal strings "1" and "0", not JSON booleans.
func boolFlag(value bool) string {
	if value {
		return "1"
	}
	return "0"
}
