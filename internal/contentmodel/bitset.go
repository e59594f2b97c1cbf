package contentmodel

import "math/bits"

type bitset struct {
	words []uint64
	size  int
}

func newBitset(size int) *bitset {
	if size <= 0 {
		return &bitset{size: size}
	}
	return &bitset{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

func (b *bitset) set(i int) {
	b.words[i/64] |= 1 << (i % 64)
}

func (b *bitset) has(i int) bool {
	return b.words[i/64]&(1<<(i%64)) != 0
}

func (b *bitset) or(other *bitset) {
	if other == nil {
		return
	}
	for i := range b.words {
		if i < len(other.words) {
			b.words[i] |= other.words[i]
		}
	}
}

func (b *bitset) clone() *bitset {
	clone := newBitset(b.size)
	copy(clone.words, b.words)
	return clone
}

func (b *bitset) empty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

func (b *bitset) forEach(f func(int)) {
	for i, w := range b.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			f(i*64 + bit)
			w &^= 1 << bit
		}
	}
}

// positions returns the set members in increasing order.
func (b *bitset) positions() []int {
	var out []int
	b.forEach(func(i int) { out = append(out, i) })
	return out
}
