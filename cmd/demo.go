package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkootstra/framescope/internal/protocol"
)

var (
	demoCount    int
	demoSeed     uint64
	demoInterval time.Duration
	demoCorrupt  float64
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print a synthetic device log to try framescope with",
	Example: `  framescope demo | framescope --print
  framescope demo --count 0 --interval 250ms > /tmp/device.log & framescope --tui /tmp/device.log`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().IntVar(&demoCount, "count", 20, "Number of lines to print, 0 for endless")
	demoCmd.Flags().Uint64Var(&demoSeed, "seed", 0, "Random seed, 0 picks one")
	demoCmd.Flags().DurationVar(&demoInterval, "interval", 0, "Delay between lines")
	demoCmd.Flags().Float64Var(&demoCorrupt, "corrupt-rate", 0.05, "Fraction of frames written with bad magic bytes")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	seed := demoSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	g := &demoGenerator{r: rand.New(rand.NewPCG(seed, seed^0x5a5a)), corrupt: demoCorrupt}

	out := cmd.OutOrStdout()
	for i := 0; demoCount == 0 || i < demoCount; i++ {
		if i > 0 && demoInterval > 0 {
			select {
			case <-time.After(demoInterval):
			case <-cmd.Context().Done():
				return nil
			}
		}
		if err := g.writeLine(out, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

// demoGenerator produces the kind of lines a serial bridge logs: sent and
// received hex dumps mixed with noise. Dumps sometimes repeat their frame or
// carry two frames back to back.
type demoGenerator struct {
	r       *rand.Rand
	corrupt float64
}

func (g *demoGenerator) frame() []byte {
	payload := make([]byte, g.r.IntN(17))
	for i := range payload {
		payload[i] = byte(g.r.IntN(256))
	}
	// Bias toward readable text so --print has something to show.
	if g.r.IntN(3) == 0 {
		for i := range payload {
			payload[i] = byte(' ' + g.r.IntN(95))
		}
	}
	trailer := [protocol.TrailerBytes]byte{byte(g.r.IntN(256)), byte(g.r.IntN(256))}
	b, _ := protocol.Build(byte(g.r.IntN(8)), byte(g.r.IntN(32)), payload, trailer)
	if g.r.Float64() < g.corrupt {
		b[1] = byte(1 + g.r.IntN(255))
	}
	return b
}

func (g *demoGenerator) dump() string {
	first := protocol.Encode(g.frame())
	switch n := g.r.IntN(10); {
	case n == 0:
		return first + first
	case n == 1:
		return first + protocol.Encode(g.frame())
	default:
		return first
	}
}

func (g *demoGenerator) writeLine(w io.Writer, now time.Time) error {
	ts := now.Format("15:04:05.000")
	var err error
	switch n := g.r.IntN(10); {
	case n < 4:
		d := g.dump()
		_, err = fmt.Fprintf(w, "%s [bridge] Send [Len]: %d [Data]: %s\n", ts, len(d)/2, d)
	case n < 8:
		d := g.dump()
		_, err = fmt.Fprintf(w, "%s uart received length: %d data: %s\n", ts, len(d)/2, d)
	default:
		_, err = fmt.Fprintf(w, "%s [bridge] heartbeat ok\n", ts)
	}
	return err
}
