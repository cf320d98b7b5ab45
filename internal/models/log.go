package models

// ActivityEntry is one rendered structured-log event held in the
// activity ring and served by the logs endpoint.
//
// Timestamp Format:
//   - Timestamp: "15:04:05" for display
//   - FullTimestamp: RFC3339 for accurate sorting
type ActivityEntry struct {
	Timestamp     string `json:"timestamp"`
	FullTimestamp string `json:"full_timestamp"`
	Level         string `json:"level"` // 3-letter code: DBG, INF, WRN, ERR
	Message       string `json:"message"`
	RequestID     string `json:"request_id,omitempty"`
}
