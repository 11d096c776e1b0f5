package worker

import (
	"sync/atomic"
	"time"

	"github.com/okian/housecup/internal/domain/model"
	"github.com/okian/housecup/internal/domain/scoring"
	"github.com/okian/housecup/internal/domain/types"
)

// Published is one immutable scoreboard computed from a store snapshot.
type Published struct {
	Revision   uint64
	Houses     []model.House
	Scoreboard scoring.Scoreboard
	// Board carries the overall standings in the shape served to clients.
	Board      types.Board
	ComputedAt time.Time
}

// Board holds the latest Published scoreboard. Revisions only move forward.
type Board struct {
	current atomic.Pointer[Published]
}

// Load returns the current scoreboard, or nil before the first publish.
func (b *Board) Load() *Published {
	return b.current.Load()
}

// Revision returns the revision of the current scoreboard, 0 before the first publish.
func (b *Board) Revision() uint64 {
	if p := b.current.Load(); p != nil {
		return p.Revision
	}
	return 0
}

// Publish installs p unless a scoreboard of the same or a newer revision
// is already current. Reports whether p was installed.
func (b *Board) Publish(p *Published) bool {
	for {
		cur := b.current.Load()
		if cur != nil && cur.Revision >= p.Revision {
			return false
		}
		if b.current.CompareAndSwap(cur, p) {
			return true
		}
	}
}
