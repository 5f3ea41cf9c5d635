package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/version"
)

// InfoResponse is the /info body.
type InfoResponse struct {
	Service string       `json:"service"`
	Build   version.Info `json:"build"`
	Started time.Time    `json:"started"`
	Uptime  string       `json:"uptime"`
}

// Info reports build information and how long the process has been up,
// counting from started.
func Info(serviceName string, started time.Time) gin.HandlerFunc {
	build := version.GetVersionInfo()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service: serviceName,
			Build:   *build,
			Started: started.UTC(),
			Uptime:  time.Since(started).Truncate(time.Second).String(),
		})
	}
}
