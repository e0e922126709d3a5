package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler adapts the registry's scrape handler to a gin route. A
// nil handler means telemetry never initialized, which the scrape should
// surface rather than 404.
func PrometheusHandler(scrape http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if scrape == nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
			return
		}
		scrape.ServeHTTP(c.Writer, c.Request)
	}
}
