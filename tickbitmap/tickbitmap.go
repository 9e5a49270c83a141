// Package tickbitmap tracks which ticks are initialized for a pool, packed
// 256 to a word the same way the on-chain TickBitmap library does.
package tickbitmap

import "github.com/defistate/v3pool/bitset"

// wordBits is the number of ticks (post tick-spacing compression) packed
// into a single bitmap word.
const wordBits = 256

// Map is a sparse mapping from word position to a 256-bit word. A word
// absent from the map is equivalent to a word with every bit clear.
type Map map[int16]bitset.BitSet

// Position splits a compressed tick index into its word and bit
// coordinates: word = compressed >> 8, bit = compressed & 0xFF. Go's
// arithmetic right shift on signed integers gives floor semantics for
// negative compressed values, matching Solidity's int16/uint8 split.
func Position(compressed int32) (word int16, bit uint8) {
	word = int16(compressed >> 8)
	bit = uint8(uint32(compressed) & 0xFF)
	return word, bit
}

// compress floor-divides tick by spacing.
func compress(tick, spacing int32) int32 {
	c := tick / spacing
	if tick < 0 && tick%spacing != 0 {
		c--
	}
	return c
}

// FlipTick toggles the bit belonging to tick (a multiple of spacing),
// allocating the backing word on first touch.
func FlipTick(m Map, tick, spacing int32) {
	word, bit := Position(tick / spacing)
	w, ok := m[word]
	if !ok {
		w = bitset.NewBitSet(wordBits)
		m[word] = w
	}
	if w.IsSet(uint64(bit)) {
		w.Unset(uint64(bit))
	} else {
		w.Set(uint64(bit))
	}
}

// NextInitializedTickWithinOneWord finds the next initialized tick in the
// same word as tick, searching at-or-below (lte) or strictly above. When no
// initialized tick exists in that word, next is the word's boundary tick
// and initialized is false; the caller clamps the result to the pool's
// valid tick range before using it.
func NextInitializedTickWithinOneWord(m Map, tick, spacing int32, lte bool) (next int32, initialized bool) {
	compressed := compress(tick, spacing)

	if lte {
		word, bit := Position(compressed)
		w := m[word]
		if msb, ok := w.HighestSetBitUpTo(uint64(bit)); ok {
			return (int32(word)*wordBits + int32(msb)) * spacing, true
		}
		return (int32(word) * wordBits) * spacing, false
	}

	word, bit := Position(compressed + 1)
	w := m[word]
	if lsb, ok := w.LowestSetBitFrom(uint64(bit)); ok {
		return (int32(word)*wordBits + int32(lsb)) * spacing, true
	}
	return (int32(word)*wordBits + (wordBits - 1)) * spacing, false
}
