package store

// Session is the hot per-session state the pipeline reads and writes between
// turns. The persisted StudySession row is the source of truth on a cold
// start; this copy avoids a database round trip for mode lookups.
type Session struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Mode         string `json:"mode"`
	Language     string `json:"language"`
	CurrentTopic string `json:"current_topic"`
	LastQuery    string `json:"last_query"`
}
