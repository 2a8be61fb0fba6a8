// verify_pursuit 以脚本控制的快递员无界面运行关卡, 并报告
// 警察的行为。无需打开窗口即可调参
//
//	go run ./cmd/verify_pursuit -level archway -score 5 -frames 7200
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/scenes"
	"github.com/decker502/courier/pkg/systems"
	"github.com/decker502/courier/pkg/telemetry"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	dataDir = flag.String("data", "data", "data directory")
	level   = flag.String("level", "shoreditch", "level to load")
	seed    = flag.Uint64("seed", 1, "random seed")
	frames  = flag.Int("frames", 60*60, "frames to simulate")
	score   = flag.Int("score", 5, "starting score, drives the wanted level")
	turnSec = flag.Float64("turn", 2, "seconds between turns of the scripted courier")
	verbose = flag.Bool("verbose", false, "debug logging")
)

const dt = 1.0 / 60.0

func main() {
	flag.Parse()
	logger := logging.Setup("info", *verbose)

	data := os.DirFS(*dataDir)
	tuning, err := config.LoadTuningConfig(data, "tuning.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "tuning: %v\n", err)
		os.Exit(1)
	}

	reader := sdkmetric.NewManualReader()
	provider, err := telemetry.New(telemetry.Config{Enabled: true, ServiceName: "verify_pursuit", Reader: reader})
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
		os.Exit(1)
	}
	defer provider.Shutdown(context.Background())

	scene := scenes.NewGameScene(data, scenes.Options{
		Tuning:  tuning,
		Seed:    *seed,
		Metrics: systems.NewMetrics(provider.Meter(systems.MeterName)),
	})
	var ended *scenes.RunSummary
	scene.OnSessionEnd = func(sum scenes.RunSummary) { ended = &sum }

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	start := time.Now()
	scene.LoadLevel(ctx, *level)
	if err := scene.WaitLoaded(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "load: %v\n", err)
		os.Exit(1)
	}
	logger.Info().Str("level", *level).Dur("took", time.Since(start)).
		Int("surfaces", scene.Assets().Surfaces.Len()).Msg("level loaded")

	w := scene.World()
	w.Session.Score = *score
	scene.Placement().SyncEnemyQuota(w.Session.EnemyQuota())
	scene.Placement().RefreshPatrolTargets()
	fmt.Printf("score %d -> wanted level %d, %d officers\n", *score, w.Session.WantedLevel(), len(w.Officers()))

	states := map[ecs.EntityID]components.PursuitState{}
	transitions := 0
	turnEvery := int(*turnSec / dt)
	if turnEvery < 1 {
		turnEvery = 1
	}

	frame := 0
	for ; frame < *frames && ended == nil; frame++ {
		in := game.Input{MoveY: 1}
		// 每个周期的四分之一时间向右转
		if (frame/turnEvery)%4 == 0 {
			in.MoveX = 1
		}
		scene.Update(dt, in)

		for _, id := range w.Officers() {
			p, ok := ecs.GetComponent[*components.PursuitComponent](w.EntityManager, id)
			if !ok {
				continue
			}
			if prev, seen := states[id]; seen && prev != p.State {
				transitions++
				pos, _ := w.Position(id)
				fmt.Printf("t=%6.2fs officer %d %s -> %s at (%.0f, %.1f, %.0f) player dist %.1f\n",
					w.Now(), id, prev, p.State, pos.X, pos.Y, pos.Z, pos.Dist(w.PlayerPosition()))
			}
			states[id] = p.State
		}
	}

	snap := scene.Snapshot()
	fmt.Printf("\nsimulated %d frames (%.1fs)\n", frame, float64(frame)*dt)
	fmt.Printf("score %d, armor %d, time left %.1f, status %s\n", snap.Score, snap.Armor, snap.TimeLeft, snap.Status)
	fmt.Printf("officers %d, state changes %d, powerups on map %d\n", len(snap.Officers), transitions, len(snap.Powerups))

	byState := map[string]int{}
	for _, o := range snap.Officers {
		byState[o.State]++
	}
	names := make([]string, 0, len(byState))
	for s := range byState {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		fmt.Printf("  %-7s %d\n", s, byState[s])
	}

	if totals, err := telemetry.CounterTotals(context.Background(), reader); err == nil {
		counters := make([]string, 0, len(totals))
		for name := range totals {
			counters = append(counters, name)
		}
		sort.Strings(counters)
		for _, name := range counters {
			fmt.Printf("  %-22s %d\n", name, totals[name])
		}
	}

	if ended != nil {
		fmt.Printf("session ended: %s after %.1fs\n", ended.Outcome, ended.Elapsed)
	} else {
		fmt.Println("session still running")
	}
}
