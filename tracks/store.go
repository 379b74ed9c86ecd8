package tracks

import (
	"sort"
)

// Meta describes the processed video
type Meta struct {
	FPS             float64 `msgpack:"fps"`
	Width           int     `msgpack:"width"`
	Height          int     `msgpack:"height"`
	TotalFrames     int     `msgpack:"total_frames"`
	ProcessedFrames int     `msgpack:"processed_frames"`
}

// Frame holds records of one category in one frame
type Frame map[ID]*Record

// Sample is a record of a trajectory together with its frame index
type Sample struct {
	Frame  int
	Record *Record
}

// Store is the track store: category -> frame index -> identity -> record.
// Frame indices of every category are kept sorted so iteration is chronological.
// Store is not safe for concurrent writers; post-processing stages may read and
// modify records of distinct identities in parallel.
type Store struct {
	Meta    Meta
	Classes ClassMap

	frames map[Category]map[int]Frame
	order  map[Category][]int
}

// NewStore creates an empty store
func NewStore(meta Meta) *Store {
	store := &Store{
		Meta:    meta,
		Classes: make(ClassMap),
		frames:  make(map[Category]map[int]Frame, len(Categories)),
		order:   make(map[Category][]int, len(Categories)),
	}
	for _, cat := range Categories {
		store.frames[cat] = make(map[int]Frame)
	}
	return store
}

// Put stores record of identity at the frame. Existing record of the same identity is replaced,
// so each identity appears at most once per frame per category.
func (s *Store) Put(cat Category, frameIdx int, id ID, rec *Record) {
	frames, ok := s.frames[cat]
	if !ok {
		frames = make(map[int]Frame)
		s.frames[cat] = frames
	}
	frame, ok := frames[frameIdx]
	if !ok {
		frame = make(Frame)
		frames[frameIdx] = frame
		s.insertFrame(cat, frameIdx)
	}
	frame[id] = rec
}

func (s *Store) insertFrame(cat Category, frameIdx int) {
	order := s.order[cat]
	n := len(order)
	if n == 0 || order[n-1] < frameIdx {
		s.order[cat] = append(order, frameIdx)
		return
	}
	pos := sort.SearchInts(order, frameIdx)
	order = append(order, 0)
	copy(order[pos+1:], order[pos:])
	order[pos] = frameIdx
	s.order[cat] = order
}

// Get returns record of identity at the frame
func (s *Store) Get(cat Category, frameIdx int, id ID) (*Record, bool) {
	rec, ok := s.frames[cat][frameIdx][id]
	return rec, ok
}

// Frame returns records of the category at the frame (nil when absent)
func (s *Store) Frame(cat Category, frameIdx int) Frame {
	return s.frames[cat][frameIdx]
}

// Frames returns sorted frame indices of the category
func (s *Store) Frames(cat Category) []int {
	out := make([]int, len(s.order[cat]))
	copy(out, s.order[cat])
	return out
}

// Identities returns sorted identities present in the category
func (s *Store) Identities(cat Category) []ID {
	seen := make(map[ID]struct{})
	for _, frame := range s.frames[cat] {
		for id := range frame {
			seen[id] = struct{}{}
		}
	}
	ids := make([]ID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Trajectories returns every identity's records in ascending frame order
func (s *Store) Trajectories(cat Category) map[ID][]Sample {
	out := make(map[ID][]Sample)
	for _, frameIdx := range s.order[cat] {
		for id, rec := range s.frames[cat][frameIdx] {
			out[id] = append(out[id], Sample{Frame: frameIdx, Record: rec})
		}
	}
	return out
}

// Trajectory returns records of identity in ascending frame order
func (s *Store) Trajectory(cat Category, id ID) []Sample {
	var out []Sample
	for _, frameIdx := range s.order[cat] {
		if rec, ok := s.frames[cat][frameIdx][id]; ok {
			out = append(out, Sample{Frame: frameIdx, Record: rec})
		}
	}
	return out
}

// ForEach visits records of the category ordered by frame and then by identity
func (s *Store) ForEach(cat Category, fn func(frameIdx int, id ID, rec *Record)) {
	for _, frameIdx := range s.order[cat] {
		frame := s.frames[cat][frameIdx]
		ids := make([]ID, 0, len(frame))
		for id := range frame {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			fn(frameIdx, id, frame[id])
		}
	}
}

// Len returns number of records in the category
func (s *Store) Len(cat Category) int {
	total := 0
	for _, frame := range s.frames[cat] {
		total += len(frame)
	}
	return total
}
