package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"gearqueue/internal/logging"
	"gearqueue/internal/queue"
)

// Job is a unit of work tracked by the server. The zero Priority is
// queue.PriorityHigh; callers wanting normal jobs must set it explicitly.
type Job struct {
	Unique       string
	FunctionName string
	Priority     queue.Priority
	Data         []byte
	Restored     bool
}

// Stats summarises the server state.
type Stats struct {
	Queued  map[queue.Priority]int
	Running int
}

// Total returns queued plus running jobs.
func (s Stats) Total() int {
	total := s.Running
	for _, n := range s.Queued {
		total += n
	}
	return total
}

var ErrMissingUnique = errors.New("job unique key is required")

// Server owns the priority lanes and the registered persistence backend.
type Server struct {
	mu          sync.Mutex
	persistence queue.Persistence
	lanes       [3][]*Job
	live        map[string]*Job
	running     map[string]*Job
	logger      *slog.Logger
}

var _ queue.Registrar = (*Server)(nil)

// New constructs an empty server.
func New(logger *slog.Logger) *Server {
	return &Server{
		live:    make(map[string]*Job),
		running: make(map[string]*Job),
		logger:  logging.NewComponentLogger(logger, "jobqueue"),
	}
}

// SetPersistence installs or clears (nil) the persistence backend.
func (s *Server) SetPersistence(p queue.Persistence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistence = p
	if p == nil {
		s.logger.Info("persistence detached")
		return
	}
	s.logger.Info("persistence attached")
}

// Submit accepts a job. A job whose unique key is already queued or running
// is coalesced: the existing job is returned and nothing is persisted. The
// job is enqueued only after the backend accepted it.
func (s *Server) Submit(ctx context.Context, job Job) (Job, bool, error) {
	if job.Unique == "" {
		return Job{}, false, ErrMissingUnique
	}
	if !job.Priority.Valid() {
		return Job{}, false, fmt.Errorf("submit %s: invalid priority %d", strconv.Quote(job.Unique), int(job.Priority))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.live[job.Unique]; ok {
		s.logger.Debug("job coalesced", logging.String("unique", strconv.Quote(job.Unique)))
		return *existing, false, nil
	}

	if s.persistence != nil {
		if err := s.persistence.Add(ctx, job.Unique, job.FunctionName, job.Data, job.Priority); err != nil {
			return Job{}, false, fmt.Errorf("persist job %s: %w", strconv.Quote(job.Unique), err)
		}
	}
	job.Restored = false
	s.enqueueLocked(&job)
	return job, true, nil
}

// Next hands out the oldest job of the highest non-empty priority lane and
// marks it running. The second result is false when nothing is queued.
func (s *Server) Next() (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for p := range s.lanes {
		lane := s.lanes[p]
		if len(lane) == 0 {
			continue
		}
		job := lane[0]
		lane[0] = nil
		s.lanes[p] = lane[1:]
		s.running[job.Unique] = job
		return *job, true
	}
	return Job{}, false
}

// Complete finishes a job and removes it from the backend. Completing a key
// the server does not know still reaches the backend; the bool reports whether
// the job was live.
func (s *Server) Complete(ctx context.Context, unique string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, known := s.live[unique]
	functionName := ""
	if known {
		functionName = job.FunctionName
	}
	if s.persistence != nil {
		if err := s.persistence.Done(ctx, unique, functionName); err != nil {
			return known, fmt.Errorf("complete job %s: %w", strconv.Quote(unique), err)
		}
	}
	if known {
		s.removeLocked(job)
	}
	return known, nil
}

// Restore replays the backend into the lanes without persisting again and
// returns how many jobs were restored. Items whose unique key is already live
// are skipped.
func (s *Server) Restore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistence == nil {
		return 0, nil
	}
	restored := 0
	err := s.persistence.Replay(ctx, func(_ context.Context, item queue.Item) error {
		if _, ok := s.live[item.Unique]; ok {
			return nil
		}
		s.enqueueLocked(&Job{
			Unique:       item.Unique,
			FunctionName: item.FunctionName,
			Priority:     item.Priority,
			Data:         item.Data,
			Restored:     true,
		})
		restored++
		return nil
	})
	if err != nil {
		return restored, fmt.Errorf("restore jobs: %w", err)
	}
	s.logger.Info("jobs restored", logging.Int("count", restored))
	return restored, nil
}

// Flush asks the backend to make pending work durable.
func (s *Server) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persistence == nil {
		return nil
	}
	return s.persistence.Flush(ctx)
}

// Len returns the number of queued jobs.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, lane := range s.lanes {
		n += len(lane)
	}
	return n
}

// Stats returns per-priority queued counts and the running count.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{Queued: make(map[queue.Priority]int, len(s.lanes)), Running: len(s.running)}
	for p, lane := range s.lanes {
		stats.Queued[queue.Priority(p)] = len(lane)
	}
	return stats
}

// Jobs returns a snapshot of queued jobs in hand-out order.
func (s *Server) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Job
	for _, lane := range s.lanes {
		for _, job := range lane {
			out = append(out, *job)
		}
	}
	return out
}

func (s *Server) enqueueLocked(job *Job) {
	s.lanes[job.Priority] = append(s.lanes[job.Priority], job)
	s.live[job.Unique] = job
}

func (s *Server) removeLocked(job *Job) {
	delete(s.live, job.Unique)
	if _, ok := s.running[job.Unique]; ok {
		delete(s.running, job.Unique)
		return
	}
	lane := s.lanes[job.Priority]
	for i, queued := range lane {
		if queued == job {
			s.lanes[job.Priority] = append(lane[:i], lane[i+1:]...)
			return
		}
	}
}
