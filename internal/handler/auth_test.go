package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorized(t *testing.T) {
	tests := []struct {
		name          string
		authorization string
		token         string
		expected      bool
	}{
		{name: "missing header", authorization: "", token: "secret", expected: false},
		{name: "matching token", authorization: "Bearer secret", token: "secret", expected: true},
		{name: "wrong token", authorization: "Bearer other", token: "secret", expected: false},
		{name: "no bearer prefix", authorization: "secret", token: "secret", expected: false},
		{name: "basic scheme", authorization: "Basic secret", token: "secret", expected: false},
		{name: "lower case scheme", authorization: "bearer secret", token: "secret", expected: false},
		{name: "trailing space", authorization: "Bearer secret ", token: "secret", expected: false},
		{name: "empty configured token", authorization: "Bearer ", token: "", expected: false},
		{name: "token prefix only", authorization: "Bearer sec", token: "secret", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.authorization != "" {
				header.Set("Authorization", tt.authorization)
			}
			assert.Equal(t, tt.expected, Authorized(header, tt.token))
		})
	}
}
