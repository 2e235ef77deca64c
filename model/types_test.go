package model

import (
	"errors"
	"testing"
)

func TestDocIDPacking(t *testing.T) {
	tests := []struct {
		shard   ShardID
		ordinal uint32
	}{
		{0, 0},
		{0, 1},
		{3, 42},
		{255, 0},
		{255, MaxOrdinal - 1},
	}

	for _, tt := range tests {
		id := NewDocID(tt.shard, tt.ordinal)
		if got := id.Shard(); got != tt.shard {
			t.Errorf("NewDocID(%d, %d).Shard() = %d, want %d", tt.shard, tt.ordinal, got, tt.shard)
		}
		if got := id.Ordinal(); got != tt.ordinal {
			t.Errorf("NewDocID(%d, %d).Ordinal() = %d, want %d", tt.shard, tt.ordinal, got, tt.ordinal)
		}
	}
}

func TestDocIDOrdering(t *testing.T) {
	// DocIDs order first by shard, then by ordinal.
	if NewDocID(0, MaxOrdinal-1) >= NewDocID(1, 0) {
		t.Error("expected any shard-0 doc to order before shard-1 docs")
	}
	if NewDocID(2, 5) >= NewDocID(2, 6) {
		t.Error("expected ordinal order within a shard")
	}
}

func TestCandidateBetter(t *testing.T) {
	a := Candidate{Doc: NewDocID(0, 1), Score: 2.0}
	b := Candidate{Doc: NewDocID(1, 0), Score: 1.0}
	if !a.Better(b) {
		t.Error("higher score must rank above")
	}
	if b.Better(a) {
		t.Error("lower score must not rank above")
	}

	// Equal scores break ties by ascending DocID.
	c := Candidate{Doc: NewDocID(0, 1), Score: 1.0}
	d := Candidate{Doc: NewDocID(0, 2), Score: 1.0}
	if !c.Better(d) {
		t.Error("equal scores must prefer the smaller DocID")
	}
	if d.Better(c) {
		t.Error("equal scores must not prefer the larger DocID")
	}
	if c.Better(c) {
		t.Error("a candidate must not rank above itself")
	}
}

func TestShardFailureUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	failure := ShardFailure{Shard: 3, Err: cause}

	if !errors.Is(failure, cause) {
		t.Error("errors.Is must see through ShardFailure")
	}
	if got := failure.Error(); got != "shard 3: disk on fire" {
		t.Errorf("unexpected message: %q", got)
	}
}
