package handler

import (
	"net/http"

	"github.com/enterprise/ga-view-proxy/internal/app"
	"github.com/enterprise/ga-view-proxy/internal/report"
)

// GaViewOriginData serves the origin-dimension report
func GaViewOriginData(w http.ResponseWriter, r *http.Request) {
	app.ServeFunction(report.KindOrigin, w, r)
}
