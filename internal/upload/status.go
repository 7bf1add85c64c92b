package upload

import "sync"

// Status is the lifecycle state of a tracked file.
type Status string

// Tracked file states.
const (
	StatusPending Status = "pending"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// TrackedFile is one file's upload lifecycle record. Exactly one of Result
// and Err is populated, matching Status: pending carries neither, error
// carries Err only, success carries Result only. The reducer maintains
// this invariant; callers never mutate a TrackedFile directly.
type TrackedFile[TRes, TErr any] struct {
	ID       string
	FileName string
	File     File
	Tries    int
	Status   Status
	Result   *TRes
	Err      *TErr
}

// eventKind discriminates status store events.
type eventKind int

const (
	eventAdd eventKind = iota
	eventRemove
	eventMarkPending
	eventMarkError
	eventMarkSuccess
)

// event is the tagged union dispatched into the reducer. Only the fields
// relevant to its kind are set.
type event[TRes, TErr any] struct {
	kind     eventKind
	id       string
	fileName string
	file     File
	result   TRes
	err      TErr
}

// reduce is the pure transition function over the tracked collection.
// Events addressing an id that is not present are no-ops; the function
// never fails.
func reduce[TRes, TErr any](state []TrackedFile[TRes, TErr], ev event[TRes, TErr]) []TrackedFile[TRes, TErr] {
	switch ev.kind {
	case eventAdd:
		next := make([]TrackedFile[TRes, TErr], len(state), len(state)+1)
		copy(next, state)
		return append(next, TrackedFile[TRes, TErr]{
			ID:       ev.id,
			FileName: ev.fileName,
			File:     ev.file,
			Tries:    1,
			Status:   StatusPending,
		})
	case eventRemove:
		next := make([]TrackedFile[TRes, TErr], 0, len(state))
		for _, tf := range state {
			if tf.ID != ev.id {
				next = append(next, tf)
			}
		}
		return next
	case eventMarkPending, eventMarkError, eventMarkSuccess:
		next := make([]TrackedFile[TRes, TErr], len(state))
		copy(next, state)
		for i := range next {
			if next[i].ID != ev.id {
				continue
			}
			switch ev.kind {
			case eventMarkPending:
				next[i].Status = StatusPending
				next[i].Tries++
				next[i].Result = nil
				next[i].Err = nil
			case eventMarkError:
				err := ev.err
				next[i].Status = StatusError
				next[i].Err = &err
				next[i].Result = nil
			case eventMarkSuccess:
				res := ev.result
				next[i].Status = StatusSuccess
				next[i].Result = &res
				next[i].Err = nil
			}
		}
		return next
	}
	return state
}

// StatusStore holds the tracked files for one controller. All asynchronous
// work happens outside the store; callers mutate it only through the event
// methods below, each of which applies one reducer step atomically.
type StatusStore[TRes, TErr any] struct {
	mu    sync.Mutex
	files []TrackedFile[TRes, TErr]
}

// NewStatusStore returns an empty store.
func NewStatusStore[TRes, TErr any]() *StatusStore[TRes, TErr] {
	return &StatusStore[TRes, TErr]{}
}

func (s *StatusStore[TRes, TErr]) dispatch(ev event[TRes, TErr]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = reduce(s.files, ev)
}

// Add appends a new pending entry with Tries = 1.
func (s *StatusStore[TRes, TErr]) Add(id, fileName string, file File) {
	s.dispatch(event[TRes, TErr]{kind: eventAdd, id: id, fileName: fileName, file: file})
}

// Remove deletes the entry with the given id. Removing an absent id is a
// no-op, so Remove is idempotent.
func (s *StatusStore[TRes, TErr]) Remove(id string) {
	s.dispatch(event[TRes, TErr]{kind: eventRemove, id: id})
}

// MarkPending transitions an entry back to pending for a retry attempt,
// incrementing its try counter and clearing any prior outcome.
func (s *StatusStore[TRes, TErr]) MarkPending(id string) {
	s.dispatch(event[TRes, TErr]{kind: eventMarkPending, id: id})
}

// MarkError records a terminal per-attempt upload failure.
func (s *StatusStore[TRes, TErr]) MarkError(id string, err TErr) {
	s.dispatch(event[TRes, TErr]{kind: eventMarkError, id: id, err: err})
}

// MarkSuccess records a completed upload.
func (s *StatusStore[TRes, TErr]) MarkSuccess(id string, result TRes) {
	s.dispatch(event[TRes, TErr]{kind: eventMarkSuccess, id: id, result: result})
}

// Get returns a copy of the entry with the given id.
func (s *StatusStore[TRes, TErr]) Get(id string) (TrackedFile[TRes, TErr], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tf := range s.files {
		if tf.ID == id {
			return tf, true
		}
	}
	return TrackedFile[TRes, TErr]{}, false
}

// Oldest returns the entry that has been tracked the longest.
func (s *StatusStore[TRes, TErr]) Oldest() (TrackedFile[TRes, TErr], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.files) == 0 {
		return TrackedFile[TRes, TErr]{}, false
	}
	return s.files[0], true
}

// Len returns the number of tracked files.
func (s *StatusStore[TRes, TErr]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Snapshot returns a copy of the tracked collection in insertion order.
func (s *StatusStore[TRes, TErr]) Snapshot() []TrackedFile[TRes, TErr] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TrackedFile[TRes, TErr], len(s.files))
	copy(out, s.files)
	return out
}

// HasErrored reports whether any tracked file is in the error state.
func (s *StatusStore[TRes, TErr]) HasErrored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tf := range s.files {
		if tf.Status == StatusError {
			return true
		}
	}
	return false
}
