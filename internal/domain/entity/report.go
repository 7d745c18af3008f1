package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunReport is the JSON record appended to runs.log in the working directory
// after every run. It is a diagnostic trail only; resume decisions always
// come from the artifacts on disk, never from this file.
type RunReport struct {
	RunID      uuid.UUID     `json:"run_id"`
	InputPath  string        `json:"input_path"`
	WorkDir    string        `json:"work_dir"`
	Kind       InputKind     `json:"kind"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Success    bool          `json:"success"`
	Stages     []StageReport `json:"stages"`
}

// StageReport is the per-stage portion of a RunReport.
type StageReport struct {
	Stage       string  `json:"stage"`
	State       string  `json:"state"`
	Reason      string  `json:"reason,omitempty"`
	ElapsedSecs float64 `json:"elapsed_seconds,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Report builds the serializable record for this run.
func (r *Run) Report() RunReport {
	rep := RunReport{
		RunID:      r.ID,
		InputPath:  r.InputPath,
		WorkDir:    r.WorkDir,
		Kind:       r.Kind,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Success:    !r.Failed(),
	}
	for _, rec := range r.Stages {
		rep.Stages = append(rep.Stages, StageReport{
			Stage:       rec.ID.String(),
			State:       string(rec.State),
			Reason:      rec.Reason,
			ElapsedSecs: rec.Elapsed.Seconds(),
			Error:       rec.Error,
		})
	}
	return rep
}

// MarshalLine renders the report as a single JSON line.
func (rep RunReport) MarshalLine() ([]byte, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
