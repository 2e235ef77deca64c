package metadata

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// LocalBitmap is a 32-bit Roaring Bitmap over shard-local ordinals.
// It wraps the official roaring implementation and is used by candidate
// sources to materialize a resolved filter against one shard.
type LocalBitmap struct {
	rb *roaring.Bitmap
}

// NewLocalBitmap creates a new empty local bitmap.
func NewLocalBitmap() *LocalBitmap {
	return &LocalBitmap{rb: roaring.New()}
}

// Add adds an ordinal to the bitmap.
func (b *LocalBitmap) Add(ordinal uint32) {
	b.rb.Add(ordinal)
}

// Contains checks if an ordinal is in the bitmap.
func (b *LocalBitmap) Contains(ordinal uint32) bool {
	return b.rb.Contains(ordinal)
}

// IsEmpty returns true if the bitmap is empty.
func (b *LocalBitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// Cardinality returns the number of ordinals in the bitmap.
func (b *LocalBitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// And computes the intersection with another bitmap in place.
func (b *LocalBitmap) And(other *LocalBitmap) {
	b.rb.And(other.rb)
}

// Or computes the union with another bitmap in place.
func (b *LocalBitmap) Or(other *LocalBitmap) {
	b.rb.Or(other.rb)
}

// Iterator returns an iterator over the bitmap in ascending order.
func (b *LocalBitmap) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}
