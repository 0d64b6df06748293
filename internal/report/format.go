package report

// Formatter maps one upstream row to an AnalyticsData record
type Formatter func(Row) AnalyticsData

// FormatAd maps rows requested with the ad dimension set
func FormatAd(row Row) AnalyticsData {
	return AnalyticsData{
		ClientID:       row.clientID(),
		AdGroup:        row.at(1),
		AdContent:      row.at(2),
		AdMatchedQuery: row.at(3),
	}
}

// FormatOrigin maps rows requested with the origin dimension set
func FormatOrigin(row Row) AnalyticsData {
	return AnalyticsData{
		ClientID: row.clientID(),
		Campaign: row.at(1),
		Source:   row.at(2),
		Medium:   row.at(3),
		Keyword:  row.at(4),
	}
}

// Formatter returns the row formatter matching k
func (k Kind) Formatter() Formatter {
	if k == KindAd {
		return FormatAd
	}
	return FormatOrigin
}

// FormatRows applies the formatter for k to every row. The result is never
// nil so that an empty upstream result encodes as [].
func FormatRows(k Kind, rows []Row) []AnalyticsData {
	format := k.Formatter()
	data := make([]AnalyticsData, 0, len(rows))
	for _, row := range rows {
		data = append(data, format(row))
	}
	return data
}

// clientID returns the first position, or "" for an empty row
func (r Row) clientID() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// at returns the value at position i, or nil when the row is short
func (r Row) at(i int) *string {
	if i >= len(r) {
		return nil
	}
	v := r[i]
	return &v
}
