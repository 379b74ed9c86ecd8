package tracks

import (
	"io"

	"github.com/LdDl/kicksense/mot"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion changes whenever the layout below changes
const snapshotVersion = 1

type snapshotEntry struct {
	Category Category `msgpack:"c"`
	Frame    int      `msgpack:"f"`
	ID       ID       `msgpack:"i"`
	Record   *Record  `msgpack:"r"`
}

type snapshot struct {
	Version int              `msgpack:"version"`
	Meta    Meta             `msgpack:"meta"`
	Classes map[ID]mot.Class `msgpack:"classes"`
	Entries []snapshotEntry  `msgpack:"entries"`
}

// Save writes the whole store as msgpack so a long tracking pass can be reused
func (s *Store) Save(w io.Writer) error {
	snap := snapshot{
		Version: snapshotVersion,
		Meta:    s.Meta,
		Classes: s.Classes,
	}
	for _, cat := range Categories {
		s.ForEach(cat, func(frameIdx int, id ID, rec *Record) {
			snap.Entries = append(snap.Entries, snapshotEntry{Category: cat, Frame: frameIdx, ID: id, Record: rec})
		})
	}
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return errors.Wrap(err, "encode track store")
	}
	return nil
}

// Load reads store written by Save
func Load(r io.Reader) (*Store, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "decode track store")
	}
	if snap.Version != snapshotVersion {
		return nil, errors.Errorf("unsupported track store snapshot version %d", snap.Version)
	}
	store := NewStore(snap.Meta)
	for id, class := range snap.Classes {
		store.Classes[id] = class
	}
	for _, entry := range snap.Entries {
		if entry.Record == nil {
			continue
		}
		store.Put(entry.Category, entry.Frame, entry.ID, entry.Record)
	}
	return store, nil
}
