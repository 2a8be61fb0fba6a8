package systems

import (
	"math"
	"testing"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

func TestDetect(t *testing.T) {
	tuning := config.DefaultTuning().Pursuit
	deg := math.Pi / 180

	tests := []struct {
		name   string
		target utils.Vec3
		want   bool
	}{
		{"heard behind", utils.V3(0, 0, -9.9), true},
		{"heard beside", utils.V3(5, 0, 0), true},
		{"seen ahead", utils.V3(0, 0, 30), true},
		{"just inside vision", utils.V3(0, 0, 59.9), true},
		{"at vision radius", utils.V3(0, 0, 60), false},
		{"beyond vision", utils.V3(0, 0, 80), false},
		{"behind beyond hearing", utils.V3(0, 0, -30), false},
		{"inside half fov", utils.V3(30*math.Sin(60*deg), 0, 30*math.Cos(60*deg)), true},
		{"outside half fov", utils.V3(30*math.Sin(80*deg), 0, 30*math.Cos(80*deg)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(utils.Vec3{}, 0, tt.target, tuning); got != tt.want {
				t.Errorf("Detect(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestDetectHearingIgnoresFacing(t *testing.T) {
	tuning := config.DefaultTuning().Pursuit
	for i := 0; i < 16; i++ {
		heading := float64(i) * math.Pi / 8
		for _, d := range []float64{0.5, 5, 9.99} {
			if !Detect(utils.Vec3{}, heading, utils.V3(d, 0, 0), tuning) {
				t.Errorf("heading %.2f dist %.2f: not detected inside hearing radius", heading, d)
			}
		}
	}
}

func TestPursuitHysteresis(t *testing.T) {
	tests := []struct {
		name      string
		behind    float64
		wantState components.PursuitState
	}{
		{"at vision radius", 60, components.StateChase},
		{"at lose distance", 90, components.StateChase},
		{"past lose distance", 90.1, components.StatePatrol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, nil)
			_, _, pursuit := addOfficer(t, w, utils.Vec3{}, 0)
			pursuit.State = components.StateChase
			pursuit.SetTarget(utils.V3(5, 0, 5))

			NewPursuitSystem(w).Update(0.016, utils.V3(0, 0, -tt.behind))

			if pursuit.State != tt.wantState {
				t.Errorf("state = %s, want %s", pursuit.State, tt.wantState)
			}
			if tt.wantState == components.StatePatrol && pursuit.HasTarget {
				t.Errorf("patrol target should be cleared on losing the player")
			}
		})
	}
}

func TestPursuitChaseMovesTowardPlayer(t *testing.T) {
	w := newTestWorld(t, nil)
	id, tr, pursuit := addOfficer(t, w, utils.Vec3{}, math.Pi/2)
	ps := NewPursuitSystem(w)

	player := utils.V3(40, 0, 0)
	ps.Update(0.05, player)

	if pursuit.State != components.StateChase {
		t.Fatalf("state = %s, want CHASE (player inside vision cone)", pursuit.State)
	}
	if got, want := tr.Position.X, 21*0.05; math.Abs(got-want) > 1e-9 {
		t.Errorf("moved %.4f, want %.4f", got, want)
	}
	if math.Abs(tr.Heading-math.Pi/2) > 1e-9 {
		t.Errorf("heading = %.3f, want facing +X", tr.Heading)
	}
	if animState(w, id) != types.AnimChase {
		t.Errorf("animation = %q, want Chase", animState(w, id))
	}
}

func TestPursuitStepBoundedByRunSpeed(t *testing.T) {
	w := newTestWorld(t, nil)
	_, tr, _ := addOfficer(t, w, utils.Vec3{}, 0)
	ps := NewPursuitSystem(w)

	ps.Update(w.Tuning.MaxFrameDelta, utils.V3(0, 0, 50))
	limit := w.Tuning.Pursuit.RunSpeed * w.Tuning.MaxFrameDelta
	if moved := tr.Position.Len(); moved > limit+1e-9 {
		t.Errorf("officer moved %.3f in one frame, limit %.3f", moved, limit)
	}
}

func TestPursuitCatchBustsExactlyOnce(t *testing.T) {
	w := newTestWorld(t, nil)
	first, _, _ := addOfficer(t, w, utils.Vec3{}, 0)
	second, _, _ := addOfficer(t, w, utils.V3(1, 0, 0), 0)
	ps := NewPursuitSystem(w)

	player := utils.V3(0, 0, 3)
	if !ps.Update(0.016, player) {
		t.Fatalf("expected a catch at distance 3")
	}
	if w.Session.GameActive || !w.Session.IsBusted {
		t.Errorf("session: active=%v busted=%v, want ended and busted", w.Session.GameActive, w.Session.IsBusted)
	}
	if w.Session.Outcome() != game.OutcomeBusted {
		t.Errorf("outcome = %s", w.Session.Outcome())
	}
	if animState(w, first) != types.AnimHook {
		t.Errorf("catching officer animation = %q, want Hook", animState(w, first))
	}
	if animState(w, second) != types.AnimIdle {
		t.Errorf("second officer should not be processed after the bust, got %q", animState(w, second))
	}

	if ps.Update(0.016, player) {
		t.Errorf("second update reported another catch")
	}
	if animState(w, first) != types.AnimHook {
		t.Errorf("Hook overridden after bust: %q", animState(w, first))
	}
}

func TestPursuitCatchBoundary(t *testing.T) {
	w := newTestWorld(t, nil)
	_, _, _ = addOfficer(t, w, utils.Vec3{}, 0)
	ps := NewPursuitSystem(w)

	player := utils.V3(0, 0, 3.5)
	if ps.Update(0.05, player) {
		t.Fatalf("distance equal to the catch radius must not bust")
	}
	if !w.Session.GameActive {
		t.Fatalf("session ended at the boundary")
	}
	if !ps.Update(0.05, player) {
		t.Errorf("officer closed in but did not catch on the next frame")
	}
}

func TestPursuitFrozenAfterSessionEnd(t *testing.T) {
	w := newTestWorld(t, nil)
	_, tr, pursuit := addOfficer(t, w, utils.Vec3{}, 0)
	w.Session.GameActive = false

	NewPursuitSystem(w).Update(0.05, utils.V3(0, 0, 5))
	if tr.Position != (utils.Vec3{}) || pursuit.State != components.StatePatrol {
		t.Errorf("officer changed after session end: pos=%v state=%s", tr.Position, pursuit.State)
	}
}

func TestPatrolPicksTargetAndWalks(t *testing.T) {
	w := newTestWorld(t, flatCity(t, 500))
	_, tr, pursuit := addOfficer(t, w, utils.Vec3{}, 0)
	ps := NewPursuitSystem(w)

	ps.Update(0.05, utils.V3(400, 0, 400))

	if !pursuit.HasTarget {
		t.Fatalf("officer did not pick a patrol target")
	}
	d := pursuit.PatrolTarget.HorizontalDist(utils.Vec3{})
	if d < 10-1e-9 || d > 40+1e-9 {
		t.Errorf("patrol target at distance %.2f, want 10..40", d)
	}
	if moved := tr.Position.HorizontalDist(utils.Vec3{}); math.Abs(moved-8*0.05) > 1e-9 {
		t.Errorf("walked %.4f, want %.4f", moved, 8*0.05)
	}
}

func TestPatrolIdleThenRetarget(t *testing.T) {
	w := newTestWorld(t, nil)
	id, _, pursuit := addOfficer(t, w, utils.Vec3{}, 0)
	pursuit.SetTarget(utils.V3(1, 0, 0))
	ps := NewPursuitSystem(w)
	far := utils.V3(1000, 0, 1000)

	for i := 0; i < 4; i++ {
		ps.Update(0.5, far)
	}
	if !pursuit.HasTarget || math.Abs(pursuit.IdleTime-2.0) > 1e-9 {
		t.Fatalf("after 2s idle: hasTarget=%v idle=%.2f", pursuit.HasTarget, pursuit.IdleTime)
	}
	if animState(w, id) != types.AnimIdle {
		t.Errorf("arrived officer animation = %q, want Idle", animState(w, id))
	}
	ps.Update(0.5, far)
	if pursuit.HasTarget {
		t.Errorf("target should be cleared once idle time exceeds the threshold")
	}
}

func TestPatrolWithoutGroundHoldsPosition(t *testing.T) {
	w := newTestWorld(t, nil)
	id, tr, pursuit := addOfficer(t, w, utils.V3(3, 0, 3), 0)

	NewPursuitSystem(w).Update(0.05, utils.V3(1000, 0, 1000))

	if tr.Position != utils.V3(3, 0, 3) || pursuit.HasTarget {
		t.Errorf("officer should hold: pos=%v hasTarget=%v", tr.Position, pursuit.HasTarget)
	}
	if animState(w, id) != types.AnimIdle {
		t.Errorf("animation = %q, want Idle", animState(w, id))
	}
}

func TestPursuitGroundFollowLerps(t *testing.T) {
	w := newTestWorld(t, flatCity(t, 100))
	_, tr, pursuit := addOfficer(t, w, utils.V3(0, 10, 0), 0)
	pursuit.SetTarget(utils.V3(0, 0, 0))

	NewPursuitSystem(w).Update(0.05, utils.V3(90, 0, 90))

	// 插值系数 5 * 0.05
	if math.Abs(tr.Position.Y-7.5) > 1e-9 {
		t.Errorf("y = %.3f, want 7.5", tr.Position.Y)
	}
}

func TestAdvance(t *testing.T) {
	got := advance(utils.V3(0, 5, 0), utils.V3(3, 0, 4), 10)
	if got != utils.V3(3, 5, 4) {
		t.Errorf("advance should stop at the target column, got %v", got)
	}
	got = advance(utils.V3(0, 0, 0), utils.V3(3, 9, 4), 2.5)
	if math.Abs(got.X-1.5) > 1e-9 || math.Abs(got.Z-2) > 1e-9 || got.Y != 0 {
		t.Errorf("advance half way: got %v", got)
	}
}
