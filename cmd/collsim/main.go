// Command collsim runs a collision scene headless and reports what moved.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"collmatrix/internal/config"
	"collmatrix/internal/sim"
)

var (
	configPath = flag.String("config", "", "Scene config (JSON); empty runs the built-in demo")
	ticks      = flag.Int("ticks", 600, "Number of ticks to simulate")
	dump       = flag.String("dump", "", "Write the effective config to this path and exit")
)

func main() {
	flag.Parse()

	cfg := demoConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("collsim: %v", err)
		}
	}
	if *dump != "" {
		if err := cfg.Save(*dump); err != nil {
			log.Fatalf("collsim: %v", err)
		}
		return
	}

	s := sim.FromConfig(cfg)
	start := time.Now()
	s.Run(*ticks)
	elapsed := time.Since(start)

	fmt.Printf("%d ticks in %v (%v/tick)\n", s.Ticks, elapsed.Round(time.Microsecond), (elapsed / time.Duration(max(1, s.Ticks))).Round(time.Microsecond))
	fmt.Printf("impacts %d | crushes %d | landings %d\n", s.Stats.Impacts, s.Stats.Crushes, s.Stats.Landings)
	for _, b := range s.Bodies() {
		state := "awake"
		switch {
		case b.Mover.Disabled:
			state = "disabled"
		case b.Sleeping:
			state = "asleep"
		}
		fmt.Printf("  %-10s #%d at (%.2f, %.2f, %.2f) %s\n", b.Mover.Kind, b.ID(), b.Mover.Pos.X, b.Mover.Pos.Y, b.Mover.Pos.Z, state)
	}
	for _, a := range s.Agents() {
		fmt.Printf("  agent      #%d at (%.2f, %.2f, %.2f) %s, %d landings\n", a.ID(), a.Pos.X, a.Pos.Y, a.Pos.Z, a.Outcome, a.Landings)
	}
}

// demoConfig drops a ball and an agent onto a block next to a lift.
func demoConfig() *config.Config {
	cfg := config.Default()
	lift := 0
	cfg.Scene = config.Scene{
		Platforms: []config.PlatformDef{{Range: [3]float32{0, 0, 4}, Speed: 1, Pause: 1}},
		Objects: []config.PrimitiveDef{
			{Type: "cube", Min: [3]float32{10, 10, 0}, Max: [3]float32{20, 20, 3}, Fixed: true},
			{Type: "sphere", Center: [3]float32{30, 30, 2}, Radius: 2},
			{Type: "cylinder", P1: [3]float32{40, 15, 0}, P2: [3]float32{40, 15, 6}, Radius: 1.5},
			{Type: "cube", Min: [3]float32{24, 10, 0}, Max: [3]float32{28, 14, 0.5}, Platform: &lift},
			{Type: "hollowCube", Min: [3]float32{40, 40, 0}, Max: [3]float32{50, 50, 5}, Thickness: 0.25},
		},
		Movers: []config.MoverDef{
			{Kind: "ball", Position: [3]float32{15, 15, 12}, Velocity: [3]float32{2, 0, 0}},
			{Kind: "debris", Position: [3]float32{30, 30, 10}},
			{Kind: "ball", Position: [3]float32{26, 12, 3}},
		},
		Agents: []config.AgentDef{
			{Position: [3]float32{12, 12, 20}},
			{Position: [3]float32{8, 15, 0.5}, Velocity: [3]float32{1.5, 0, 0}},
		},
	}
	return cfg
}
