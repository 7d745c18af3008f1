package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StageState is the runtime state of one stage within a run.
type StageState string

const (
	StagePending StageState = "PENDING"
	StageRunning StageState = "RUNNING"
	StageDone    StageState = "DONE"
	StageSkipped StageState = "SKIPPED"
	StageFailed  StageState = "FAILED"
)

// StageRecord tracks one stage's progress through a run.
type StageRecord struct {
	ID      StageID
	State   StageState
	Reason  string
	Elapsed time.Duration
	Error   string

	startedAt time.Time
}

// Run is the record of a single pipeline invocation. Stage state lives here
// for reporting only; the authoritative resume state is the working
// directory itself.
type Run struct {
	ID         uuid.UUID
	InputPath  string
	WorkDir    string
	Kind       InputKind
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []*StageRecord
}

// NewRun creates a run record with every stage pending.
func NewRun(inputPath, workDir string, kind InputKind) *Run {
	r := &Run{
		ID:        uuid.New(),
		InputPath: inputPath,
		WorkDir:   workDir,
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
	for _, id := range AllStages() {
		r.Stages = append(r.Stages, &StageRecord{ID: id, State: StagePending})
	}
	return r
}

// Stage returns the record for the given stage.
func (r *Run) Stage(id StageID) *StageRecord {
	for _, rec := range r.Stages {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// Finish stamps the run's end time.
func (r *Run) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Elapsed is the total wall-clock time of the run so far.
func (r *Run) Elapsed() time.Duration {
	end := r.FinishedAt
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return end.Sub(r.StartedAt)
}

// Failed reports whether any stage failed.
func (r *Run) Failed() bool {
	for _, rec := range r.Stages {
		if rec.State == StageFailed {
			return true
		}
	}
	return false
}

func (s *StageRecord) MarkRunning() error {
	if err := s.transition(StageRunning); err != nil {
		return err
	}
	s.startedAt = time.Now()
	return nil
}

func (s *StageRecord) MarkDone() error {
	if err := s.transition(StageDone); err != nil {
		return err
	}
	s.Elapsed = time.Since(s.startedAt)
	return nil
}

func (s *StageRecord) MarkSkipped(reason string) error {
	if err := s.transition(StageSkipped); err != nil {
		return err
	}
	s.Reason = reason
	return nil
}

func (s *StageRecord) MarkFailed(errMsg string) error {
	if err := s.transition(StageFailed); err != nil {
		return err
	}
	if !s.startedAt.IsZero() {
		s.Elapsed = time.Since(s.startedAt)
	}
	s.Error = errMsg
	return nil
}

func (s *StageRecord) transition(to StageState) error {
	if !allowedTransition(s.State, to) {
		return fmt.Errorf("invalid transition for stage %s: %s -> %s", s.ID, s.State, to)
	}
	s.State = to
	return nil
}

func allowedTransition(from, to StageState) bool {
	switch from {
	case StagePending:
		return to == StageRunning || to == StageSkipped
	case StageRunning:
		return to == StageDone || to == StageFailed
	}
	return false
}
