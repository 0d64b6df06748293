package report

import (
	"fmt"
	"strings"
)

// Kind selects which dimension set a report requests
type Kind string

const (
	KindAd     Kind = "ad"
	KindOrigin Kind = "origin"
)

// SessionsMetric is the only metric requested upstream
const SessionsMetric = "ga:sessions"

// dimensions maps each report kind to its upstream dimension list. The first
// dimension is always the client identifier.
var dimensions = map[Kind][]string{
	KindAd:     {"ga:dimension5", "ga:adGroup", "ga:adContent", "ga:adMatchedQuery"},
	KindOrigin: {"ga:dimension5", "ga:campaign", "ga:source", "ga:medium", "ga:keyword"},
}

// Row is one upstream result record, ordered like the requested dimensions
type Row []string

// AnalyticsData is a single formatted row. Which optional fields are present
// depends on the report kind. An optional field is nil only when the row has
// no value at that position; an empty upstream value is kept as "".
type AnalyticsData struct {
	ClientID string `json:"clientId"`

	AdGroup        *string `json:"adGroup,omitempty"`
	AdContent      *string `json:"adContent,omitempty"`
	AdMatchedQuery *string `json:"adMatchedQuery,omitempty"`

	Campaign *string `json:"campaign,omitempty"`
	Source   *string `json:"source,omitempty"`
	Medium   *string `json:"medium,omitempty"`
	Keyword  *string `json:"keyword,omitempty"`
}

// ParseKind accepts "ad" or "origin", case-insensitively
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is a known report kind
func (k Kind) Valid() bool {
	_, ok := dimensions[k]
	return ok
}

// Dimensions returns the comma-joined dimension identifiers for k
func (k Kind) Dimensions() string {
	return strings.Join(dimensions[k], ",")
}

func (k Kind) String() string {
	return string(k)
}
