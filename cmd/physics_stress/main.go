// Stress test running many independent collision worlds in parallel
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"runtime"
	"time"

	"collmatrix/internal/physics"
	"collmatrix/internal/sim"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/sync/errgroup"
)

var (
	worlds  = flag.Int("worlds", runtime.NumCPU(), "Number of independent worlds")
	objects = flag.Int("objects", 2000, "Static primitives per world")
	movers  = flag.Int("movers", 500, "Ballistic bodies per world")
	ticks   = flag.Int("ticks", 300, "Ticks per world")
	size    = flag.Int("size", 128, "Grid cells per side")
)

type result struct {
	world    int
	build    time.Duration
	run      time.Duration
	impacts  int
	asleep   int
	disabled int
	sliced   int
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	results := make([]result, *worlds)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i := range results {
		g.Go(func() error {
			r, err := runWorld(ctx, i)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("physics_stress: %v", err)
	}

	var total time.Duration
	for _, r := range results {
		total += r.run
		fmt.Printf("world %3d: build %8v | %d ticks %10v (%8v/tick) | %6d impacts | %4d asleep | %4d left grid | %d sliced cells\n",
			r.world, r.build.Round(time.Microsecond), *ticks, r.run.Round(time.Microsecond),
			(r.run / time.Duration(max(1, *ticks))).Round(time.Microsecond),
			r.impacts, r.asleep, r.disabled, r.sliced)
	}
	fmt.Printf("mean tick: %v\n", (total / time.Duration(max(1, *worlds**ticks))).Round(time.Microsecond))
}

func runWorld(ctx context.Context, id int) (result, error) {
	rng := rand.New(rand.NewPCG(uint64(id), 42))
	n := float32(*size)
	s := physics.DefaultSettings()
	s.Seed = uint64(id) + 1

	start := time.Now()
	w := physics.NewWorld(physics.NewGrid(*size, *size, 0, 0, 1, 1), nil, nil, s)
	for i := 0; i < *objects; i++ {
		x, y := rng.Float32()*(n-4), rng.Float32()*(n-4)
		switch rng.IntN(3) {
		case 0:
			sx, sy, sz := 0.5+rng.Float32()*3, 0.5+rng.Float32()*3, 0.5+rng.Float32()*4
			w.InsertCube(physics.NewAABB(x, x+sx, y, y+sy, 0, sz), physics.Params{}, -1)
		case 1:
			r := 0.3 + rng.Float32()*1.5
			w.InsertSphere(rl.Vector3{X: x + r, Y: y + r, Z: rng.Float32() * 3}, r, physics.Params{}, -1)
		default:
			r := 0.2 + rng.Float32()
			h := 1 + rng.Float32()*4
			w.InsertCylinder(rl.Vector3{X: x + r, Y: y + r}, rl.Vector3{X: x + r, Y: y + r, Z: h}, r, r, physics.Params{}, -1)
		}
	}
	sliced := w.Optimize()

	sm := sim.New(w, nil, sim.Options{})
	for i := 0; i < *movers; i++ {
		pos := rl.Vector3{X: 1 + rng.Float32()*(n-2), Y: 1 + rng.Float32()*(n-2), Z: 5 + rng.Float32()*10}
		vel := rl.Vector3{X: rng.Float32()*4 - 2, Y: rng.Float32()*4 - 2}
		sm.AddMover(physics.MoverBall, pos, vel)
	}
	build := time.Since(start)

	start = time.Now()
	for t := 0; t < *ticks; t++ {
		if err := ctx.Err(); err != nil {
			return result{}, err
		}
		sm.Step()
	}
	r := result{world: id, build: build, run: time.Since(start), impacts: sm.Stats.Impacts, sliced: sliced}
	for _, b := range sm.Bodies() {
		if b.Sleeping {
			r.asleep++
		}
		if b.Mover.Disabled {
			r.disabled++
		}
	}
	return r, nil
}
