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
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"

	"github.com/alibaba/opensandbox/contentsd/pkg/web/model"
)

// StatusController handles host status requests
type StatusController struct {
	*basicController
}

func NewStatusController(ctx *gin.Context) *StatusController {
	return &StatusController{basicController: newBasicController(ctx)}
}

// GetStatus returns current host resource usage
func (c *StatusController) GetStatus() {
	status, err := c.readStatus()
	if err != nil {
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			fmt.Sprintf("error reading host status. %v", err),
		)
		return
	}

	c.RespondJSON(http.StatusOK, status)
}

// readStatus collects current CPU, memory and root disk usage
func (c *StatusController) readStatus() (*model.Status, error) {
	status := model.NewStatus()

	status.CpuCount = float64(runtime.GOMAXPROCS(-1))
	cpuPercent, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU percent: %w", err)
	}
	if len(cpuPercent) > 0 {
		status.CpuUsedPct = cpuPercent[0]
	}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory info: %w", err)
	}
	status.MemTotalMiB = float64(vmStat.Total) / 1024 / 1024
	status.MemUsedMiB = float64(vmStat.Used) / 1024 / 1024

	diskStat, err := disk.Usage(store.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage: %w", err)
	}
	status.DiskTotalMiB = float64(diskStat.Total) / 1024 / 1024
	status.DiskUsedMiB = float64(diskStat.Used) / 1024 / 1024

	return status, nil
}
