package dto

// GenerateRequest asks for a batch of synthetic records.
type GenerateRequest struct {
	Profile string `json:"profile"`
	Count   int    `json:"count"`
	Seed    int64  `json:"seed"`
	StartID int    `json:"start_id"`
	Upload  bool   `json:"upload"`
}

// GenerateResponse carries the generated records and where they were stored.
type GenerateResponse struct {
	RunID     string `json:"run_id"`
	Count     int    `json:"count"`
	Fallbacks int    `json:"fallbacks"`
	Artifact  string `json:"artifact,omitempty"`
	Records   any    `json:"records"`
}
