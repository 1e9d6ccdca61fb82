package synth

import (
	"time"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/navigation"
)

// SessionSynthesizer walks the navigation model to build browsing sessions.
type SessionSynthesizer struct {
	nav    *navigation.Model
	users  []string
	window Window
	cfg    config.SessionConfig
}

// NewSessionSynthesizer returns a synthesizer over users. users must not be
// empty.
func NewSessionSynthesizer(nav *navigation.Model, users []string, window Window, cfg config.SessionConfig) *SessionSynthesizer {
	return &SessionSynthesizer{nav: nav, users: users, window: window, cfg: cfg}
}

// Synthesize builds one session. Page views are spaced by the configured
// gap and clamped to the session end, so they always lie within
// [StartTime, EndTime] while the duration stays independent of the step
// count.
func (s *SessionSynthesizer) Synthesize(st *Stream) model.Session {
	r := st.Rand
	user := s.users[r.IntN(len(s.users))]
	start := s.window.sample(r)
	steps := between(r, s.cfg.MinSteps, s.cfg.MaxSteps)
	duration := between(r, s.cfg.MinDuration, s.cfg.MaxDuration)
	end := start.Add(time.Duration(duration) * time.Second)

	views := make([]model.PageView, 0, steps)
	var prev model.PageType
	at := start
	for pos := 0; pos < steps; pos++ {
		if pos > 0 {
			at = at.Add(time.Duration(between(r, s.cfg.PageGapMin, s.cfg.PageGapMax)) * time.Second)
		}
		page := s.nav.Next(r, prev)
		ts := at
		if ts.After(end) {
			ts = end
		}
		views = append(views, model.PageView{Timestamp: ts, PageType: page})
		prev = page
	}

	return model.Session{
		SessionID:       st.IDs.NewSessionID(),
		UserID:          user,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: int64(duration),
		PageViews:       views,
	}
}
