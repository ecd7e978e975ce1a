package domain

import "time"

// Snapshot is a paused run of a named machine, persisted between steps.
// States are strings here because sessions only run machines loaded from
// definitions.
type Snapshot struct {
	ID        string    `json:"id"`
	Machine   string    `json:"machine"`
	Input     string    `json:"input"`
	Tape      string    `json:"tape"`
	Head      int       `json:"head"`
	State     string    `json:"state"`
	Steps     int       `json:"steps"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnapshot captures cfg for the session id.
func NewSnapshot(id, machine, input string, cfg *Configuration[string], status Status) *Snapshot {
	return &Snapshot{
		ID:        id,
		Machine:   machine,
		Input:     input,
		Tape:      string(cfg.Tape),
		Head:      cfg.Head,
		State:     cfg.State,
		Steps:     cfg.Steps,
		Status:    status,
		UpdatedAt: time.Now(),
	}
}

// Configuration rebuilds the execution context the snapshot was taken from.
func (s *Snapshot) Configuration() *Configuration[string] {
	return &Configuration[string]{
		Tape:  []rune(s.Tape),
		Head:  s.Head,
		State: s.State,
		Steps: s.Steps,
	}
}

// Update records cfg and the outcome of the latest steps.
func (s *Snapshot) Update(cfg *Configuration[string], status Status, err error) {
	s.Tape = string(cfg.Tape)
	s.Head = cfg.Head
	s.State = cfg.State
	s.Steps = cfg.Steps
	s.Status = status
	if err != nil {
		s.Error = err.Error()
		s.ErrorKind = ErrorKind(err)
	}
	s.UpdatedAt = time.Now()
}

// Render shows the tape with the head marked.
func (s *Snapshot) Render() string {
	return s.Configuration().String()
}
