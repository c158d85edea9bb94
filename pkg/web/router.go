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

package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/contentsd/pkg/log"
	"github.com/alibaba/opensandbox/contentsd/pkg/web/controller"
)

// NewRouter builds a Gin engine with all contentsd routes.
func NewRouter(accessToken string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logMiddleware(), accessTokenMiddleware(accessToken))

	r.GET("/ping", controller.PingHandler)

	api := r.Group("/api")
	{
		cts := api.Group("/contents")
		{
			cts.GET("/*path", withContents(func(c *controller.ContentsController) { c.Get() }))
			cts.POST("/*path", withContents(func(c *controller.ContentsController) { c.Post() }))
			cts.PUT("/*path", withContents(func(c *controller.ContentsController) { c.Put() }))
			cts.PATCH("/*path", withContents(func(c *controller.ContentsController) { c.Patch() }))
			cts.DELETE("/*path", withContents(func(c *controller.ContentsController) { c.Delete() }))
		}

		api.GET("/status", func(ctx *gin.Context) {
			controller.NewStatusController(ctx).GetStatus()
		})
		api.GET("/events/subscribe", func(ctx *gin.Context) {
			controller.NewEventsController(ctx).Subscribe()
		})
	}

	r.GET("/files/*path", func(ctx *gin.Context) {
		controller.NewFilesController(ctx).Download()
	})

	return r
}

func withContents(fn func(*controller.ContentsController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewContentsController(ctx))
	}
}

// accessTokenMiddleware checks the credential the way Jupyter clients send
// it: an "Authorization: token <t>" header or a token query parameter.
func accessTokenMiddleware(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token == "" {
			ctx.Next()
			return
		}

		requested := ""
		if auth := ctx.GetHeader("Authorization"); strings.HasPrefix(auth, "token ") {
			requested = strings.TrimPrefix(auth, "token ")
		}
		if requested == "" {
			requested = ctx.Query("token")
		}
		if requested != token {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, map[string]any{
				"message": "Unauthorized: invalid or missing token",
			})
			return
		}

		ctx.Next()
	}
}

func logMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log.Info("Requested: %v - %v", ctx.Request.Method, ctx.Request.URL.String())
		ctx.Next()
	}
}
