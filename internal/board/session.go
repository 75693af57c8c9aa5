package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/models"
)

// Backend is the server side of the board: the full list for a job and the
// batch endpoint for kanban updates.
type Backend interface {
	ListApplications(ctx context.Context, jobID uint) ([]models.Application, error)
	UpdateKanban(ctx context.Context, jobID uint, updates []dtos.KanbanUpdate) error
}

type LoadState int

const (
	LoadPending LoadState = iota
	Loaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load failed"
	default:
		return "loading"
	}
}

// reloadTimeout bounds the recovery fetch after a failed sync, which runs
// even if the caller's context is already done.
const reloadTimeout = 10 * time.Second

// Session owns the board of one job. Moves are applied speculatively, then
// either confirmed by the server or thrown away by a full reload. Moves are
// not serialized against each other; the last response to land wins.
type Session struct {
	jobID     uint
	backend   Backend
	indicator *Indicator
	log       *slog.Logger

	mu      sync.Mutex
	board   *Board
	state   LoadState
	pending map[uuid.UUID]Pending
}

func NewSession(jobID uint, backend Backend, indicator *Indicator, log *slog.Logger) *Session {
	if indicator == nil {
		indicator = NewIndicator(nil, DefaultMinUpdating, DefaultSavedFor)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		jobID:     jobID,
		backend:   backend,
		indicator: indicator,
		log:       log,
		board:     Empty(jobID),
		pending:   make(map[uuid.UUID]Pending),
	}
}

func (s *Session) JobID() uint { return s.jobID }

func (s *Session) Indicator() *Indicator { return s.indicator }

// Board returns a copy of the current board.
func (s *Session) Board() *Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

func (s *Session) LoadState() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InFlight is the number of moves still waiting for the server.
func (s *Session) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Load fetches every application of the job and rebuilds the board. On
// failure the board is left empty and the state is LoadFailed; there is no
// retry.
func (s *Session) Load(ctx context.Context) error {
	apps, err := s.backend.ListApplications(ctx, s.jobID)
	var b *Board
	if err == nil {
		b, err = Project(s.jobID, apps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.board = Empty(s.jobID)
		s.state = LoadFailed
		s.log.Warn("board load failed", "job_id", s.jobID, "error", err)
		return fmt.Errorf("load board for job %d: %w", s.jobID, err)
	}
	s.board = b
	s.state = Loaded
	s.log.Debug("board loaded", "job_id", s.jobID, "applications", b.Count())
	return nil
}

// Move applies m locally and persists the target column in one batch. On
// success the sent status and order are stamped onto the local items. On
// failure the speculative board is dropped and rebuilt from a fresh fetch.
func (s *Session) Move(ctx context.Context, m Move) error {
	s.mu.Lock()
	p, err := s.board.Move(m)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.pending[p.Token] = p
	s.mu.Unlock()

	gen := s.indicator.Begin()
	err = s.backend.UpdateKanban(ctx, s.jobID, p.Updates)

	if err == nil {
		s.mu.Lock()
		delete(s.pending, p.Token)
		s.board.Confirm(p)
		s.mu.Unlock()
		s.indicator.Finish(gen, true)
		s.log.Debug("column synced", "job_id", s.jobID, "status", p.Status, "size", len(p.Updates), "token", p.Token)
		return nil
	}

	s.log.Warn("column sync failed, reloading board", "job_id", s.jobID, "status", p.Status, "token", p.Token, "error", err)
	s.mu.Lock()
	delete(s.pending, p.Token)
	s.mu.Unlock()

	reloadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
	defer cancel()
	reloadErr := s.Load(reloadCtx)
	s.indicator.Finish(gen, false)

	return errors.Join(fmt.Errorf("sync %s column: %w", p.Status, err), reloadErr)
}
