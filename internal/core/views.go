package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvgrid/internal/logging"
)

var (
	// ErrViewNotFound is returned for unknown or expired view ids.
	ErrViewNotFound = errors.New("view not found")

	// ErrViewCancelled is the failure recorded for a cancelled view.
	ErrViewCancelled = errors.New("view cancelled")
)

type view struct {
	id      string
	src     Source
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time

	mu       sync.Mutex
	table    *Table
	err      error
	finished time.Time
}

func (v *view) snapshot() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ViewState{
		ID:        v.id,
		Source:    v.src,
		Table:     v.table,
		Err:       v.err,
		StartedAt: v.started,
		DoneAt:    v.finished,
	}
}

// Start begins loading src in the background and returns the view id at
// once. ctx is used for logging only; the load has its own lifetime, ended by
// completion, Cancel or the load timeout.
func (s *Service) Start(ctx context.Context, src Source) (string, error) {
	if err := src.Validate(); err != nil {
		return "", err
	}

	loadCtx, cancel := context.WithCancel(context.Background())
	v := &view{
		id:      uuid.New().String(),
		src:     src,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}

	s.mu.Lock()
	s.views[v.id] = v
	n := len(s.views)
	s.mu.Unlock()
	s.metrics.SetActiveViews(n)

	logger := logging.WithFields(ctx, "view_id", v.id, "source", string(src.Kind()))
	logger.Info("view started", "url", src.URL)

	go s.runView(loadCtx, v, logger)

	return v.id, nil
}

func (s *Service) runView(ctx context.Context, v *view, logger *slog.Logger) {
	defer v.cancel()

	table, err := s.Load(ctx, v.src)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		err = fmt.Errorf("%w: %w", ErrViewCancelled, err)
	}

	v.mu.Lock()
	v.table = table
	v.err = err
	v.finished = time.Now()
	v.mu.Unlock()
	close(v.done)

	if err != nil {
		logger.Warn("view failed", "error", err, "duration_ms", time.Since(v.started).Milliseconds())
	} else {
		logger.Info("view ready",
			"rows", table.Len(),
			"columns", len(table.Columns),
			"duration_ms", time.Since(v.started).Milliseconds(),
		)
	}

	s.expire(v.id, s.viewTTL)
}

// expire forgets the view after delay.
func (s *Service) expire(id string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.views, id)
		n := len(s.views)
		s.mu.Unlock()
		s.metrics.SetActiveViews(n)
	})
}

func (s *Service) lookup(id string) (*view, error) {
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return v, nil
}

// View returns the current state of a view without blocking.
func (s *Service) View(id string) (ViewState, error) {
	v, err := s.lookup(id)
	if err != nil {
		return ViewState{}, err
	}
	return v.snapshot(), nil
}

// Wait blocks until the view settles or ctx is done. On ctx expiry the
// still-pending state is returned together with ctx.Err().
func (s *Service) Wait(ctx context.Context, id string) (ViewState, error) {
	v, err := s.lookup(id)
	if err != nil {
		return ViewState{}, err
	}
	select {
	case <-v.done:
		return v.snapshot(), nil
	case <-ctx.Done():
		return v.snapshot(), ctx.Err()
	}
}

// Cancel aborts a pending view. Cancelling a settled view is a no-op.
func (s *Service) Cancel(id string) error {
	v, err := s.lookup(id)
	if err != nil {
		return err
	}
	v.cancel()
	return nil
}

// ActiveViews returns the number of views still loading.
func (s *Service) ActiveViews() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, v := range s.views {
		select {
		case <-v.done:
		default:
			n++
		}
	}
	return n
}

// WaitForViews blocks until every pending view settles or ctx is done. Used
// during shutdown.
func (s *Service) WaitForViews(ctx context.Context) error {
	s.mu.RLock()
	pending := make([]*view, 0, len(s.views))
	for _, v := range s.views {
		pending = append(pending, v)
	}
	s.mu.RUnlock()

	for _, v := range pending {
		select {
		case <-v.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// CancelAll aborts every pending view.
func (s *Service) CancelAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.views {
		v.cancel()
	}
}
