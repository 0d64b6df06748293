package handler

import (
	"net/http"

	"github.com/enterprise/ga-view-proxy/internal/app"
	"github.com/enterprise/ga-view-proxy/internal/report"
)

// GaViewAdData serves the ad-dimension report
func GaViewAdData(w http.ResponseWriter, r *http.Request) {
	app.ServeFunction(report.KindAd, w, r)
}
