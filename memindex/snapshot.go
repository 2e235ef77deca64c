package memindex

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/hupe1980/vecquery/model"
)

const snapshotVersion = 1

type snapshot struct {
	Version int           `json:"version"`
	Metric  Metric        `json:"metric"`
	Docs    []snapshotDoc `json:"docs"`
	Deleted []uint32      `json:"deleted,omitempty"`
}

type snapshotDoc struct {
	Vectors map[string][]float32 `json:"vectors,omitempty"`
	Fields  json.RawMessage      `json:"fields,omitempty"`
}

// WriteSnapshot writes an s2-compressed snapshot of the shard's contents.
// The lexical indexes are not serialized; they are rebuilt on load.
func (s *Shard) WriteSnapshot(w io.Writer) error {
	s.mu.RLock()
	snap := snapshot{
		Version: snapshotVersion,
		Metric:  s.metric,
		Docs:    make([]snapshotDoc, len(s.fields)),
	}
	for ordinal := range s.fields {
		doc := snapshotDoc{}
		if len(s.fields[ordinal]) > 0 {
			raw, err := json.Marshal(s.fields[ordinal])
			if err != nil {
				s.mu.RUnlock()
				return fmt.Errorf("memindex: marshal fields of ordinal %d: %w", ordinal, err)
			}
			doc.Fields = raw
		}
		for field, column := range s.vectors {
			if ordinal < len(column) && column[ordinal] != nil {
				if doc.Vectors == nil {
					doc.Vectors = make(map[string][]float32)
				}
				doc.Vectors[field] = column[ordinal]
			}
		}
		snap.Docs[ordinal] = doc
	}
	for ordinal := range s.deleted.Iterator() {
		snap.Deleted = append(snap.Deleted, ordinal)
	}
	s.mu.RUnlock()

	zw := s2.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(&snap); err != nil {
		zw.Close()
		return fmt.Errorf("memindex: encode snapshot: %w", err)
	}
	return zw.Close()
}

// LoadSnapshot reads a snapshot written by WriteSnapshot into a fresh shard
// with the given id, re-indexing string fields for lexical search.
func LoadSnapshot(id model.ShardID, r io.Reader, optFns ...func(*Options)) (*Shard, error) {
	var snap snapshot
	if err := json.NewDecoder(s2.NewReader(r)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("memindex: decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("memindex: unsupported snapshot version %d", snap.Version)
	}

	opts := append([]func(*Options){WithMetric(snap.Metric)}, optFns...)
	shard := NewShard(id, opts...)
	for i, sd := range snap.Docs {
		doc := Doc{Vectors: sd.Vectors}
		if len(sd.Fields) > 0 {
			if err := json.Unmarshal(sd.Fields, &doc.Fields); err != nil {
				return nil, fmt.Errorf("memindex: decode fields of ordinal %d: %w", i, err)
			}
		}
		if _, err := shard.Add(doc); err != nil {
			return nil, err
		}
	}
	// Deleted documents are stored as empty placeholders so surviving
	// ordinals stay stable; re-mark them.
	for _, ordinal := range snap.Deleted {
		if err := shard.Delete(model.NewDocID(id, ordinal)); err != nil {
			return nil, err
		}
	}
	return shard, nil
}
