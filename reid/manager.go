// Package reid keeps persistent player identities on top of a frame-to-frame tracker
// which hands out a new provisional id every time it loses somebody for a few frames.
package reid

import (
	"image"
	"math"

	"github.com/LdDl/kicksense/mot"
	"github.com/LdDl/kicksense/tracks"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State of a persistent identity
type State uint8

const (
	// Active identity is bound to a provisional track seen in the latest frame
	Active State = iota + 1
	// Dormant identity lost its provisional track but may still be re-identified
	Dormant
	// Expired identity is beyond the inactivity window and waits to be pruned
	Expired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Dormant:
		return "dormant"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Config of Manager
type Config struct {
	FPS                float64
	MaxInactiveSeconds float64
	HistBins           int
	MinCrop            int
	// Minimal composite score to accept a dormant candidate
	MinScore float64
	// Allowed displacement = BaseGate + MaxSpeedPxPerFrame * frames elapsed
	BaseGate           float64
	MaxSpeedPxPerFrame float64
	// Weight of the gate usage ratio subtracted from appearance similarity
	PositionPenalty float64
	// Expired identities are forgotten after PruneFactor inactivity windows
	PruneFactor int
}

func DefaultConfig(fps float64) Config {
	return Config{
		FPS:                fps,
		MaxInactiveSeconds: 2.5,
		HistBins:           16,
		MinCrop:            8,
		MinScore:           0.45,
		BaseGate:           80.0,
		MaxSpeedPxPerFrame: 18.0,
		PositionPenalty:    0.15,
		PruneFactor:        3,
	}
}

// Stats are diagnostic counters
type Stats struct {
	// New identities
	Minted int
	// Provisional tracks bound to a dormant identity
	Rematched int
	// Assignments resolved through an existing binding
	Reused int
	// Dormant candidates passed the position gate but none reached MinScore
	Ambiguous int
	Pruned    int
}

type identity struct {
	id         tracks.ID
	state      State
	descriptor Descriptor
	lastPos    mot.Point
	lastSeen   int
	bound      bool
	inUse      bool
}

// Manager maps provisional track ids to persistent identities.
// Identities live in an arena, handle is the index of the slot; pruned slots are reused.
type Manager struct {
	cfg    Config
	window int
	logger *logrus.Entry

	arena    []identity
	free     []int
	byID     map[tracks.ID]int
	bindings map[uuid.UUID]int
	nextID   tracks.ID
	stats    Stats
}

// NewManager creates manager. Logger may be nil.
func NewManager(cfg Config, logger *logrus.Entry) *Manager {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.PruneFactor < 1 {
		cfg.PruneFactor = 1
	}
	return &Manager{
		cfg:      cfg,
		window:   max(1, int(cfg.FPS*cfg.MaxInactiveSeconds)),
		logger:   logger.WithField("component", "reid"),
		byID:     make(map[tracks.ID]int),
		bindings: make(map[uuid.UUID]int),
		nextID:   1,
	}
}

// Window returns inactivity window in frames
func (m *Manager) Window() int {
	return m.window
}

// Stats returns copy of counters
func (m *Manager) Stats() Stats {
	return m.stats
}

// Len returns number of identities kept in memory
func (m *Manager) Len() int {
	return len(m.byID)
}

// State returns state of identity. ok is false for unknown or pruned identities.
func (m *Manager) State(id tracks.ID) (State, bool) {
	h, ok := m.byID[id]
	if !ok {
		return 0, false
	}
	return m.arena[h].state, true
}

// Assign returns persistent identity for provisional track observed at frameIdx.
// pos is the pixel foot point of bbox.
func (m *Manager) Assign(provisional uuid.UUID, frame image.Image, bbox mot.Rectangle, pos mot.Point, frameIdx int) tracks.ID {
	h, ok := m.bindings[provisional]
	// bound identities refresh their descriptor too: dormant matching compares against the latest look
	descriptor := ComputeDescriptor(frame, bbox, m.cfg.HistBins, m.cfg.MinCrop)
	if ok {
		m.stats.Reused++
	} else {
		h = m.matchDormant(descriptor, pos, frameIdx)
		if h < 0 {
			h = m.mint()
		} else {
			m.stats.Rematched++
			m.logger.WithFields(logrus.Fields{
				"identity":    m.arena[h].id,
				"provisional": provisional,
				"frame":       frameIdx,
				"gap":         frameIdx - m.arena[h].lastSeen,
			}).Debug("Re-identified dormant identity")
		}
		m.bindings[provisional] = h
	}

	ident := &m.arena[h]
	ident.descriptor = descriptor
	ident.lastPos = pos
	ident.lastSeen = frameIdx
	ident.state = Active
	ident.bound = true
	return ident.id
}

// matchDormant returns handle of the best dormant candidate or -1
func (m *Manager) matchDormant(descriptor Descriptor, pos mot.Point, frameIdx int) int {
	best := -1
	bestScore := math.Inf(-1)
	candidates := 0
	for h := range m.arena {
		ident := &m.arena[h]
		if !ident.inUse || ident.state != Dormant {
			continue
		}
		dt := frameIdx - ident.lastSeen
		if dt <= 0 || dt > m.window {
			continue
		}
		allowed := m.cfg.BaseGate + m.cfg.MaxSpeedPxPerFrame*float64(dt)
		dist := pos.DistanceTo(ident.lastPos)
		if dist > allowed {
			continue
		}
		candidates++
		ratio := dist / math.Max(allowed, 1e-6)
		var score float64
		if similarity, ok := Cosine(descriptor, ident.descriptor); ok {
			score = similarity - m.cfg.PositionPenalty*ratio
		} else {
			score = 1.0 - ratio
		}
		if score > bestScore || (score == bestScore && best >= 0 && ident.id < m.arena[best].id) {
			bestScore = score
			best = h
		}
	}
	if best >= 0 && bestScore >= m.cfg.MinScore {
		return best
	}
	if candidates > 0 {
		m.stats.Ambiguous++
	}
	return -1
}

func (m *Manager) mint() int {
	ident := identity{id: m.nextID, inUse: true}
	m.nextID++
	m.stats.Minted++
	var h int
	if n := len(m.free); n > 0 {
		h = m.free[n-1]
		m.free = m.free[:n-1]
		m.arena[h] = ident
	} else {
		h = len(m.arena)
		m.arena = append(m.arena, ident)
	}
	m.byID[ident.id] = h
	return h
}

// Cleanup must be called once per frame after all Assign calls with provisional ids seen in the frame.
// Missing provisional ids are unbound, unbound identities turn dormant, then expired after the
// inactivity window and are finally pruned.
func (m *Manager) Cleanup(seen map[uuid.UUID]struct{}, frameIdx int) {
	for provisional, h := range m.bindings {
		if _, ok := seen[provisional]; ok {
			continue
		}
		delete(m.bindings, provisional)
		m.arena[h].bound = false
	}
	pruneAfter := m.window * m.cfg.PruneFactor
	for h := range m.arena {
		ident := &m.arena[h]
		if !ident.inUse || ident.bound {
			continue
		}
		idle := frameIdx - ident.lastSeen
		switch {
		case idle > pruneAfter:
			delete(m.byID, ident.id)
			*ident = identity{}
			m.free = append(m.free, h)
			m.stats.Pruned++
		case idle > m.window:
			ident.state = Expired
		default:
			ident.state = Dormant
		}
	}
}
