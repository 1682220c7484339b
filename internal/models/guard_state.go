package models

// GuardState is what GET /guard/state reports.
type GuardState struct {
	Visibility     string `json:"visibility"`
	ScreenPower    string `json:"screen_power"`
	Eligible       bool   `json:"eligible"`
	LoggingEnabled bool   `json:"logging_enabled"`
}

// GuardStats are the gate and delivery counters.
type GuardStats struct {
	Received   int64 `json:"received"`
	Notified   int64 `json:"notified"`
	Suppressed int64 `json:"suppressed"`
	Enqueued   int64 `json:"enqueued"`
	Dropped    int64 `json:"dropped"`
	Delivered  int64 `json:"delivered"`
	Failed     int64 `json:"failed"`
	Clients    int   `json:"clients"`
}
