package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"

	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

type Handlers struct {
	log  logger.Logger
	chat ports.ChatPort
}

func New(log logger.Logger, chat ports.ChatPort) *Handlers {
	return &Handlers{
		log:  log,
		chat: chat,
	}
}

var startApp = time.Now()

// latencySource is implemented by clients that track the keepalive round
// trip.
type latencySource interface {
	CurrentLatency() time.Duration
}

func (h *Handlers) StatusHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cpuPercent := 0.0
	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		cpuPercent = percent[0]
	}

	status := gin.H{
		"state":       h.chat.ReadyState(),
		"username":    h.chat.Username(),
		"channels":    h.chat.Channels(),
		"uptime":      time.Since(startApp).Truncate(time.Second).String(),
		"cpu_percent": cpuPercent,
		"mem_sys_mb":  m.Sys / 1024 / 1024,
	}
	if src, ok := h.chat.(latencySource); ok {
		status["latency_ms"] = src.CurrentLatency().Milliseconds()
	}

	c.JSON(http.StatusOK, status)
}
