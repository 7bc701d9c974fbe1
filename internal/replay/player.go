package replay

import "github.com/talgya/citycore/internal/actions"

// Player replays a loaded File by reinserting each entry into an
// actions.Queue at its originally recorded tick, tagged SourceReplay. Not
// present in recorder.rs — the original engine drives playback inline in
// its simulation loop — but required by this port's PreSim hook, which
// only knows how to drain an actions.Queue.
type Player struct {
	file *File
	next int // index of the next entry to dispatch
}

// NewPlayer returns a Player positioned at the start of f.
func NewPlayer(f *File) *Player {
	return &Player{file: f}
}

// Done reports whether every entry has been dispatched.
func (p *Player) Done() bool { return p.next >= len(p.file.Entries) }

// Tick pushes every entry recorded for the given tick onto q, in recorded
// order, and advances past them. Entries are emitted in file order; callers
// must drive Tick with non-decreasing tick values, matching how the
// recorder appended them in simulation order.
func (p *Player) Tick(tick uint64, q *actions.Queue) {
	for p.next < len(p.file.Entries) && p.file.Entries[p.next].Tick == tick {
		e := p.file.Entries[p.next]
		q.PushQueued(actions.QueuedAction{Tick: e.Tick, Source: actions.SourceReplay, Action: e.Action})
		p.next++
	}
}

// Remaining returns the number of entries not yet dispatched.
func (p *Player) Remaining() int { return len(p.file.Entries) - p.next }
