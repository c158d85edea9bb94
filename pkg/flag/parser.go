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

package flag

import (
	"flag"
	stdlog "log"
	"os"
	"strings"

	"github.com/alibaba/opensandbox/contentsd/pkg/log"
)

const (
	rootEnv  = "CONTENTSD_ROOT"
	tokenEnv = "CONTENTSD_TOKEN"
)

// defaultHideGlobs mirrors the patterns notebook servers hide by default.
var defaultHideGlobs = "__pycache__,*.pyc,*.pyo,.DS_Store,*.so,*.dylib,*~"

// InitFlags registers CLI flags and env overrides.
func InitFlags() {
	// Set default values
	ServerRoot = "."
	ServerPort = 44780
	ServerLogLevel = 6
	ServerAccessToken = ""
	ServerAllowHidden = false

	// First, set default values from environment variables
	if rootFromEnv := os.Getenv(rootEnv); rootFromEnv != "" {
		ServerRoot = rootFromEnv
	}
	if tokenFromEnv := os.Getenv(tokenEnv); tokenFromEnv != "" {
		ServerAccessToken = tokenFromEnv
	}

	// Then define flags with current values as defaults
	flag.StringVar(&ServerRoot, "root", ServerRoot, "Directory served through the contents API")
	flag.IntVar(&ServerPort, "port", ServerPort, "Server listening port (default: 44780)")
	flag.IntVar(&ServerLogLevel, "log-level", ServerLogLevel, "Server log level (3=Error, 4=Warning, 5/6=Info, 7=Debug, default: 6)")
	flag.StringVar(&ServerAccessToken, "access-token", ServerAccessToken, "Server access token for API authentication")
	flag.BoolVar(&ServerAllowHidden, "allow-hidden", ServerAllowHidden, "Expose hidden files and directories in listings")
	hideGlobs := flag.String("hide-globs", defaultHideGlobs, "Comma-separated doublestar patterns excluded from listings")

	// Parse flags - these will override environment variables if provided
	flag.Parse()

	ServerHideGlobs = nil
	for _, pattern := range strings.Split(*hideGlobs, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern != "" {
			ServerHideGlobs = append(ServerHideGlobs, pattern)
		}
	}

	rootInfo, err := os.Stat(ServerRoot)
	if err != nil || !rootInfo.IsDir() {
		stdlog.Panicf("Invalid contents root %q: must be an existing directory", ServerRoot)
	}

	// Log final values
	log.Info("contents root is: %s", ServerRoot)
	log.Info("hidden files allowed: %v", ServerAllowHidden)
}
