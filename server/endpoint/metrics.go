package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// StatsSource contributes a named section to the /metrics document, e.g.
// the hub's delivery counters under "sse".
type StatsSource struct {
	Name     string
	Snapshot func() any
}

// Metrics reports runtime memory and goroutine figures plus every source's
// snapshot, taken at request time.
func Metrics(sources ...StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		body := gin.H{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"goroutines": runtime.NumGoroutine(),
			"memory": gin.H{
				"alloc_mb":       m.Alloc / 1024 / 1024,
				"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
				"sys_mb":         m.Sys / 1024 / 1024,
				"gc_runs":        m.NumGC,
			},
		}
		for _, s := range sources {
			if s.Name != "" && s.Snapshot != nil {
				body[s.Name] = s.Snapshot()
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
