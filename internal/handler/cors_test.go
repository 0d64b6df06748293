package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetCORSHeaders(t *testing.T) {
	tests := []struct {
		name     string
		request  map[string]string
		expected map[string]string
	}{
		{
			name:     "no cors headers",
			request:  map[string]string{"Authorization": "Bearer x"},
			expected: map[string]string{},
		},
		{
			name: "origin and method",
			request: map[string]string{
				"Origin":                        "https://example.com",
				"Access-Control-Request-Method": "POST",
			},
			expected: map[string]string{
				"Access-Control-Allow-Origin":  "https://example.com",
				"Access-Control-Allow-Methods": "POST",
				"Access-Control-Max-Age":       "31536000",
			},
		},
		{
			name:    "requested headers only",
			request: map[string]string{"Access-Control-Request-Headers": "authorization,content-type"},
			expected: map[string]string{
				"Access-Control-Allow-Headers": "authorization,content-type",
				"Access-Control-Max-Age":       "31536000",
			},
		},
		{
			name:    "origin is echoed without validation",
			request: map[string]string{"Origin": "https://evil.example"},
			expected: map[string]string{
				"Access-Control-Allow-Origin": "https://evil.example",
				"Access-Control-Max-Age":      "31536000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := http.Header{}
			for k, v := range tt.request {
				req.Set(k, v)
			}
			resp := http.Header{}

			SetCORSHeaders(req, resp)

			assert.Len(t, resp, len(tt.expected))
			for k, v := range tt.expected {
				assert.Equal(t, v, resp.Get(k), k)
			}
		})
	}
}
