package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dropfour/dropfour/board"
	"github.com/dropfour/dropfour/controller"
	"github.com/dropfour/dropfour/coordinator"
	"github.com/dropfour/dropfour/internal/xlog"
	"github.com/dropfour/dropfour/measure"
	"github.com/dropfour/dropfour/render"
	"github.com/dropfour/dropfour/search"
	"github.com/dropfour/dropfour/transport"
	"github.com/dropfour/dropfour/worker"
)

var (
	procs    = flag.Int("procs", 0, "total process count, coordinator included (positional fallback: prog <procs> <depth>)")
	depth    = flag.Int("depth", 0, "max search depth, the AI difficulty (positional fallback)")
	precomp  = flag.Int("precompute", 2, "frontier precompute depth built locally before farming out to workers")
	mjerenje = flag.String("mjerenje", "mjerenje.txt", "measurement sink file")
	pretty   = flag.Bool("pretty", false, "render the board with box-drawing borders instead of the official P/C/= alphabet")
	verbose  = flag.Bool("verbose", false, "print the board after every move as the game is played")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	nprocs, maxDepth := resolveArgs()
	if nprocs < 2 {
		log.Fatalf("dropfour: need at least 2 processes (1 coordinator + >=1 worker), got %d", nprocs)
	}
	if maxDepth < 1 {
		log.Fatalf("dropfour: max depth must be >= 1, got %d", maxDepth)
	}

	cfg := board.DefaultConfig()
	b := board.New(cfg)
	engine := search.New(maxDepth, *precomp)

	tp := transport.NewLocal(nprocs)
	c := coordinator.New(tp, b.Copy(), engine)
	pool := worker.StartPool(tp, nprocs-1, engine)

	sink, err := measure.NewFileSink(*mjerenje)
	if err != nil {
		log.Fatalf("dropfour: measurement sink: %s", err)
	}
	once := measure.NewOnce(sink, func() int64 { return time.Now().UnixNano() / int64(time.Millisecond) })

	human := controller.NewStdin(os.Stdin, os.Stdout)
	ai := controller.NewDistributed(c)
	loop := controller.NewLoop(b, human, ai)
	logger := xlog.New(os.Stdout, *verbose, *pretty)

	winner, err := once.Do(nprocs, func() (int, error) {
		p, err := loop.Run(context.Background(), logger)
		return int(p), err
	})
	if err != nil {
		log.Fatalf("dropfour: game loop: %s", err)
	}

	if *pretty {
		log.Print("\n" + render.Pretty(b))
	} else {
		log.Print("\n" + render.Official(b))
	}
	log.Printf("winner: %d", winner)

	if err := c.Shutdown(); err != nil {
		log.Fatalf("dropfour: shutdown: %s", err)
	}
	if err := pool.Wait(); err != nil {
		log.Fatalf("dropfour: worker pool: %s", err)
	}
}

// resolveArgs honors -procs/-depth flags when set, falling back to the
// two bare positional arguments (prog <total_processes> <max_depth>).
func resolveArgs() (nprocs, maxDepth int) {
	nprocs, maxDepth = *procs, *depth
	args := flag.Args()
	if nprocs == 0 && len(args) > 0 {
		nprocs = atoiOrFatal(args[0])
	}
	if maxDepth == 0 && len(args) > 1 {
		maxDepth = atoiOrFatal(args[1])
	}
	return nprocs, maxDepth
}

func atoiOrFatal(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			log.Fatalf("dropfour: invalid integer argument %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n
}
