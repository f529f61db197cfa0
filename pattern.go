package uringbench

import mathrand "math/rand"

// offsetGen produces block-aligned file offsets for one workload run.
// Sequential walks the file front to back, wrapping to zero when the next
// block would run past the end; random draws a uniform block index. Either
// way every offset satisfies off%blockSize == 0 and off+blockSize <= fileSize,
// which direct I/O requires.
type offsetGen struct {
	pattern   Pattern
	blockSize int64
	fileSize  int64
	numBlocks int64
	cursor    int64
	rng       *mathrand.Rand
}

func newOffsetGen(pattern Pattern, blockSize, fileSize int64, rng *mathrand.Rand) *offsetGen {
	return &offsetGen{
		pattern:   pattern,
		blockSize: blockSize,
		fileSize:  fileSize,
		numBlocks: fileSize / blockSize,
		rng:       rng,
	}
}

func (g *offsetGen) next() int64 {
	if g.pattern == PatternRandom {
		return g.rng.Int63n(g.numBlocks) * g.blockSize
	}
	if g.cursor+g.blockSize > g.fileSize {
		g.cursor = 0
	}
	off := g.cursor
	g.cursor += g.blockSize
	return off
}
