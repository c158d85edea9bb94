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

package controller

import (
	"bytes"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
)

// nolint:unused
func newTestContext(method, rawURL string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, rawURL, bytes.NewReader(body))
	ctx.Request = req

	// Populate the wildcard param the way the router would
	for _, prefix := range []string{"/api/contents", "/files"} {
		if path, ok := strings.CutPrefix(req.URL.Path, prefix); ok {
			ctx.Params = gin.Params{{Key: "path", Value: path}}
			break
		}
	}
	return ctx, w
}
