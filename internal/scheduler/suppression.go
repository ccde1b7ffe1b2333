package scheduler

import (
	"time"

	"github.com/reefkeep/tankd/internal/model"
)

// suppression tracks which templates have already been notified today. It is
// keyed by calendar date so entries expire at day rollover instead of
// lingering until restart; an un-actioned task notifies again the next day
// it is due. Never persisted: a restart clears all suppression.
//
// Not safe for concurrent use; the owning Service serializes access.
type suppression struct {
	day time.Time
	ids map[int64]bool
}

func newSuppression() *suppression {
	return &suppression{ids: make(map[int64]bool)}
}

func (s *suppression) roll(now time.Time) {
	day := model.Midnight(now)
	if !day.Equal(s.day) {
		s.day = day
		s.ids = make(map[int64]bool)
	}
}

func (s *suppression) mark(id int64, now time.Time) {
	s.roll(now)
	s.ids[id] = true
}

func (s *suppression) clear(id int64, now time.Time) {
	s.roll(now)
	delete(s.ids, id)
}

// snapshot returns the current day's notified set for use with ShouldNotify.
func (s *suppression) snapshot(now time.Time) map[int64]bool {
	s.roll(now)
	return s.ids
}
