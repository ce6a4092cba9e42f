package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/porelog/internal/history"
	"github.com/JonMunkholm/porelog/internal/logging"
	"github.com/JonMunkholm/porelog/internal/porelog"
)

// historyTimeout bounds the history write that follows every load.
const historyTimeout = 5 * time.Second

// LoadResult describes a load that was applied to its session.
type LoadResult struct {
	SessionID  string        `json:"session_id"`
	FileName   string        `json:"file_name"`
	Generation uint64        `json:"generation"`
	View       porelog.View  `json:"view"`
	SizeBytes  int64         `json:"size_bytes"`
	Duration   time.Duration `json:"duration_ns"`
}

// Load reads a pore log from r into the session.
//
// Each call starts a new generation for the session; the latest started
// load wins. When a newer load or a Reset begins before this one finishes,
// the result is discarded and ErrSuperseded is returned. A load that fails
// while still current resets the session to the empty view, so a stale table
// never stays on screen next to an error.
//
// size is the length reported by the client, or -1 when unknown. Every
// outcome is written to the load history.
func (s *Service) Load(ctx context.Context, sessionID, fileName string, r io.Reader, size int64) (LoadResult, error) {
	start := s.opts.Now()

	gen, err := s.beginLoad(sessionID)
	if err != nil {
		return LoadResult{}, err
	}

	logger := logging.WithFields(ctx, "file", fileName, "generation", gen)
	logger.Debug("load started", "size_bytes", size)

	view, read, loadErr := s.readView(ctx, r, size)
	if read > size {
		size = read
	}

	applyErr := s.finishLoad(sessionID, gen, fileName, view, loadErr)
	status := history.StatusLoaded
	switch {
	case applyErr != nil:
		if errors.Is(applyErr, ErrSuperseded) {
			status = history.StatusSuperseded
		} else {
			status = history.StatusFailed
		}
	case loadErr != nil:
		status = history.StatusFailed
	}

	s.recordHistory(ctx, history.Entry{
		SessionID: sessionID,
		FileName:  fileName,
		SizeBytes: size,
		Records:   len(view.Rows),
		Columns:   len(view.Header),
		Status:    status,
		Error:     errorText(loadErr),
		LoadedAt:  start,
	})

	duration := s.opts.Now().Sub(start)
	if applyErr != nil {
		logger.Info("load discarded", "reason", applyErr, "duration_ms", duration.Milliseconds())
		return LoadResult{}, applyErr
	}
	if loadErr != nil {
		logger.Warn("load failed", "error", loadErr, "duration_ms", duration.Milliseconds())
		return LoadResult{}, fmt.Errorf("load %q: %w", fileName, loadErr)
	}

	logger.Info("load completed",
		"records", len(view.Rows),
		"columns", len(view.Header),
		"size_bytes", size,
		"duration_ms", duration.Milliseconds(),
	)
	return LoadResult{
		SessionID:  sessionID,
		FileName:   fileName,
		Generation: gen,
		View:       view,
		SizeBytes:  size,
		Duration:   duration,
	}, nil
}

// beginLoad starts a new generation for the session.
func (s *Service) beginLoad(id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.Generation++
	sess.LastAccess = s.opts.Now()
	return sess.Generation, nil
}

// readView waits for a load slot, then loads and transforms the file.
// It also returns the number of bytes read.
func (s *Service) readView(ctx context.Context, r io.Reader, size int64) (porelog.View, int64, error) {
	if s.opts.MaxFileSize > 0 && size > s.opts.MaxFileSize {
		return porelog.EmptyView(), 0, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, size, s.opts.MaxFileSize)
	}

	if err := s.acquireSlot(ctx); err != nil {
		return porelog.EmptyView(), 0, err
	}
	defer s.limiter.Release()

	if s.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.LoadTimeout)
		defer cancel()
	}

	if porelog.IsNilReader(r) {
		_, err := porelog.Load(nil)
		return porelog.EmptyView(), 0, err
	}

	guard := &guardedReader{ctx: ctx, r: r, max: s.opts.MaxFileSize}
	doc, err := porelog.Load(guard)
	switch {
	case ctx.Err() != nil:
		return porelog.EmptyView(), guard.n, ctx.Err()
	case errors.Is(err, porelog.ErrInvalidJSON) && guard.n == 0:
		return porelog.EmptyView(), 0, fmt.Errorf("%w: %w", ErrEmptyFile, err)
	case err != nil:
		return porelog.EmptyView(), guard.n, err
	}

	return porelog.TransformWith(doc, porelog.Options{Missing: s.opts.Missing}), guard.n, nil
}

// acquireSlot takes a free load slot at once, or waits for one when every
// slot is busy.
func (s *Service) acquireSlot(ctx context.Context) error {
	if s.limiter.TryAcquire() {
		return nil
	}
	logging.FromContext(ctx).Info("waiting for load slot", "active", s.limiter.ActiveCount())
	return s.limiter.Acquire(ctx)
}

// finishLoad applies a load outcome if gen is still the session's latest.
func (s *Service) finishLoad(id string, gen uint64, fileName string, view porelog.View, loadErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.Generation != gen {
		return ErrSuperseded
	}

	now := s.opts.Now()
	sess.LastAccess = now
	if loadErr != nil {
		sess.View = porelog.EmptyView()
		sess.FileName = ""
		sess.LoadedAt = time.Time{}
		sess.LastError = loadErr.Error()
		return nil
	}
	sess.View = view
	sess.FileName = fileName
	sess.LoadedAt = now
	sess.LastError = ""
	return nil
}

// recordHistory writes e to the history store. Failures are logged only; a
// broken history backend never fails a load.
func (s *Service) recordHistory(ctx context.Context, e history.Entry) {
	client := ClientInfoFromContext(ctx)
	e.IPAddress = client.IPAddress
	e.UserAgent = client.UserAgent

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	if err := s.history.Record(ctx, e); err != nil {
		logging.FromContext(ctx).Error("record load history", "error", err, "file", e.FileName)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// guardedReader stops reading once ctx ends or more than max bytes arrive.
type guardedReader struct {
	ctx context.Context
	r   io.Reader
	max int64
	n   int64
}

func (g *guardedReader) Read(p []byte) (int, error) {
	if err := g.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := g.r.Read(p)
	g.n += int64(n)
	if g.max > 0 && g.n > g.max {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, g.max)
	}
	return n, err
}
