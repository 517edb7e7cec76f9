package console

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"
)

const glitchGlyphs = `#%&@$01?!/\|<>~^`

// Glitch renders A.N.G.E.L.'s glitch bursts as a line of corrupted text.
// Higher intensity means a longer line.
type Glitch struct {
	Out io.Writer
	RNG *rand.Rand
}

func (g *Glitch) Burst(intensity float64, _ time.Duration) {
	if g == nil || g.Out == nil {
		return
	}
	intensity = min(max(intensity, 0), 1)
	n := 8 + int(intensity*40)
	var b strings.Builder
	for range n {
		b.WriteByte(glitchGlyphs[g.intN(len(glitchGlyphs))])
	}
	fmt.Fprintf(g.Out, "  %s\n", b.String())
}

func (g *Glitch) intN(n int) int {
	if g.RNG == nil {
		return rand.IntN(n)
	}
	return g.RNG.IntN(n)
}
