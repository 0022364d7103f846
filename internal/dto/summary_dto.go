package dto

// SummaryJobMessage is the queue payload that starts a pipeline run.
type SummaryJobMessage struct {
	JobID string `json:"job_id"`
}

type SummaryStageFrame struct {
	JobID      string `json:"job_id"`
	Stage      string `json:"stage"`
	StageIndex int    `json:"stage_index"`
	Error      string `json:"error,omitempty"`
}
