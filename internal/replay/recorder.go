package replay

import "github.com/talgya/citycore/internal/actions"

// Recorder captures GameActions as they are queued so a run can be replayed
// later. Record is a no-op unless Start has been called; RecordQueued skips
// actions.SourceReplay entries so a recording made during playback never
// records its own injected actions (the feedback loop recorder.rs's test
// and doc comment guard against).
type Recorder struct {
	header    Header
	entries   []Entry
	recording bool
}

// Start begins a new recording, discarding any prior in-progress one.
func (r *Recorder) Start(seed uint64, cityName string, startTick uint64) {
	r.header = Header{
		FormatVersion: CurrentFormatVersion,
		Seed:          seed,
		CityName:      cityName,
		StartTick:     startTick,
	}
	r.entries = nil
	r.recording = true
}

// IsRecording reports whether a recording is currently in progress.
func (r *Recorder) IsRecording() bool { return r.recording }

// EntryCount returns the number of entries recorded so far.
func (r *Recorder) EntryCount() int { return len(r.entries) }

// Record appends a single action at tick. No-op unless recording.
func (r *Recorder) Record(tick uint64, source actions.Source, action actions.GameAction) {
	if !r.recording {
		return
	}
	r.entries = append(r.entries, Entry{Tick: tick, Action: action, Source: source})
}

// RecordQueued snapshots every action drained from the executor's queue for
// one tick, skipping SourceReplay entries so played-back actions are not
// re-recorded into the same or a derived file.
func (r *Recorder) RecordQueued(tick uint64, drained []actions.QueuedAction) {
	if !r.recording {
		return
	}
	for _, qa := range drained {
		if qa.Source == actions.SourceReplay {
			continue
		}
		r.Record(tick, qa.Source, qa.Action)
	}
}

// Stop ends the recording and produces the finished File. Safe to call
// whether or not Start was ever called; a recorder that never started
// produces a zero-entry file stamped with endTick and stateHash anyway,
// matching the original's is_recording()==false-tolerant stop().
func (r *Recorder) Stop(endTick uint64, finalStateHash uint64) File {
	f := File{
		Header:  r.header,
		Entries: r.entries,
		Footer: Footer{
			EndTick:        endTick,
			FinalStateHash: finalStateHash,
			EntryCount:     uint64(len(r.entries)),
		},
	}
	r.recording = false
	return f
}
