package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"contentdesk/internal/models"

	"go.uber.org/zap"
)

var (
	ErrEmptyComment = errors.New("comment text is empty")
	ErrSubmitting   = errors.New("a comment submission is already in progress")
)

// AnonymousAuthor is sent when a comment has no author name.
const AnonymousAuthor = "Anonymous"

// State is the comment form state of a session.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Session is one mounted detail view.
type Session struct {
	tracker *Tracker
	newsID  string

	viewOnce sync.Once

	mu    sync.Mutex
	state State
}

func (s *Session) NewsID() string { return s.newsID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) recordView(ctx context.Context) {
	s.viewOnce.Do(func() {
		_ = s.tracker.record(ctx, s.newsID, models.ActivityView)
	})
}

// Like records a like and drops the cached counters.
func (s *Session) Like(ctx context.Context) error {
	return s.react(ctx, models.ActivityLike)
}

// Share records a share and drops the cached counters.
func (s *Session) Share(ctx context.Context) error {
	return s.react(ctx, models.ActivityShare)
}

func (s *Session) react(ctx context.Context, kind models.ActivityKind) error {
	err := s.tracker.record(ctx, s.newsID, kind)
	s.tracker.invalidate(s.newsID)
	return err
}

// Comments fetches the current comment list.
func (s *Session) Comments(ctx context.Context) ([]models.Comment, error) {
	return s.tracker.backend.Comments(ctx, s.newsID)
}

// SubmitComment posts a comment and returns the refreshed comment list.
// Blank text is rejected before any request is made, as is a second
// submission while one is in flight.
func (s *Session) SubmitComment(ctx context.Context, author, text string) ([]models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.tracker.metrics.Comment("rejected")
		return nil, ErrEmptyComment
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = AnonymousAuthor
	}

	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return nil, ErrSubmitting
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	log := s.tracker.logger.With(zap.String("news_id", s.newsID))
	if err := s.tracker.backend.AddComment(ctx, s.newsID, author, text); err != nil {
		s.tracker.metrics.Comment("error")
		log.Warn("comment submission failed", zap.Error(err))
		return nil, fmt.Errorf("submit comment: %w", err)
	}
	s.tracker.metrics.Comment("ok")
	s.tracker.invalidate(s.newsID)

	comments, err := s.tracker.backend.Comments(ctx, s.newsID)
	if err != nil {
		log.Warn("comment list refresh failed", zap.Error(err))
		return nil, fmt.Errorf("reload comments: %w", err)
	}
	return comments, nil
}
