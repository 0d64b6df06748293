package handler

import (
	"net/http"
	"strconv"
)

// corsMaxAge is one year in seconds
var corsMaxAge = strconv.Itoa(60 * 60 * 24 * 365)

// SetCORSHeaders echoes the request's Origin, requested method and requested
// headers back as the allowed values. Max-Age is only added when at least one
// of them was echoed.
//
// TODO: check Origin against an allow-list once the set of dashboards calling
// these endpoints is fixed.
func SetCORSHeaders(req http.Header, resp http.Header) {
	echoed := false

	if origin := req.Get("Origin"); origin != "" {
		resp.Set("Access-Control-Allow-Origin", origin)
		echoed = true
	}
	if method := req.Get("Access-Control-Request-Method"); method != "" {
		resp.Set("Access-Control-Allow-Methods", method)
		echoed = true
	}
	if headers := req.Get("Access-Control-Request-Headers"); headers != "" {
		resp.Set("Access-Control-Allow-Headers", headers)
		echoed = true
	}

	if echoed {
		resp.Set("Access-Control-Max-Age", corsMaxAge)
	}
}
