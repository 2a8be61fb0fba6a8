package app

import (
	"math"
	"strings"
	"testing"

	"github.com/decker502/courier/pkg/scenes"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

type fakeKeys struct {
	down map[ebiten.Key]bool
	edge map[ebiten.Key]bool
}

func (f fakeKeys) Pressed(k ebiten.Key) bool     { return f.down[k] }
func (f fakeKeys) JustPressed(k ebiten.Key) bool { return f.edge[k] }

func keys(down, edge []ebiten.Key) fakeKeys {
	f := fakeKeys{down: map[ebiten.Key]bool{}, edge: map[ebiten.Key]bool{}}
	for _, k := range down {
		f.down[k] = true
	}
	for _, k := range edge {
		f.edge[k] = true
	}
	return f
}

func TestReadInputAxes(t *testing.T) {
	tests := []struct {
		name         string
		down         []ebiten.Key
		wantX, wantY float64
	}{
		{"idle", nil, 0, 0},
		{"forward", []ebiten.Key{ebiten.KeyW}, 0, 1},
		{"back arrow", []ebiten.Key{ebiten.KeyArrowDown}, 0, -1},
		{"turn right", []ebiten.Key{ebiten.KeyD}, 1, 0},
		{"turn left", []ebiten.Key{ebiten.KeyA}, -1, 0},
		{"both cancel", []ebiten.Key{ebiten.KeyA, ebiten.KeyD}, 0, 0},
		{"key and arrow count once", []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := readInput(keys(tt.down, nil))
			if in.MoveX != tt.wantX || in.MoveY != tt.wantY {
				t.Errorf("got (%.0f, %.0f), want (%.0f, %.0f)", in.MoveX, in.MoveY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestReadInputEdges(t *testing.T) {
	in := readInput(keys([]ebiten.Key{ebiten.KeySpace}, nil))
	if in.JumpPressed {
		t.Errorf("holding space must not count as a new jump")
	}
	in = readInput(keys(nil, []ebiten.Key{ebiten.KeySpace, ebiten.KeyM, ebiten.KeyT, ebiten.KeyEscape}))
	if !in.JumpPressed || !in.MapToggled || !in.TimerToggled || !in.PauseToggled {
		t.Errorf("edges not mapped: %+v", in)
	}
}

func TestReadCommand(t *testing.T) {
	tests := []struct {
		key      ebiten.Key
		want     command
		wantKind types.PowerupKind
	}{
		{ebiten.KeyN, cmdNextLevel, 0},
		{ebiten.KeyR, cmdReset, 0},
		{ebiten.KeyO, cmdSpawnOfficer, 0},
		{ebiten.KeyF11, cmdFullscreen, 0},
		{ebiten.KeyDigit2, cmdSpawnPowerup, types.PowerupDrink},
		{ebiten.KeyDigit4, cmdSpawnPowerup, types.PowerupArmorHeavy},
		{ebiten.KeyQ, cmdNone, 0},
	}
	for _, tt := range tests {
		cmd, kind := readCommand(keys(nil, []ebiten.Key{tt.key}))
		if cmd != tt.want || (cmd == cmdSpawnPowerup && kind != tt.wantKind) {
			t.Errorf("key %v: got (%v, %v), want (%v, %v)", tt.key, cmd, kind, tt.want, tt.wantKind)
		}
	}
}

func TestViewProjection(t *testing.T) {
	v := newView(utils.V3(100, 5, 50), 2, false, 800, 600)

	if x, y := v.toScreen(100, 50); x != 400 || y != 300 {
		t.Errorf("focus should be centred, got (%.1f, %.1f)", x, y)
	}
	// +Z 指向屏幕上方
	if x, y := v.toScreen(110, 60); x != 420 || y != 280 {
		t.Errorf("got (%.1f, %.1f), want (420, 280)", x, y)
	}
	if !v.visible(0, 0, 110, 60) {
		t.Errorf("box around focus should be visible")
	}
	if v.visible(400, 0, 500, 10) {
		t.Errorf("box 300 units east should be off screen at scale 2")
	}

	m := newView(utils.V3(0, 0, 0), 2, true, 800, 600)
	if m.scale != 2*mapZoom {
		t.Errorf("map view scale = %.2f", m.scale)
	}
}

func TestHeadingTip(t *testing.T) {
	v := newView(utils.V3(0, 0, 0), 1, false, 200, 200)
	x, y := v.headingTip(0, 0, 0, 10)
	if x != 100 || y != 90 {
		t.Errorf("heading 0 should point up, got (%.1f, %.1f)", x, y)
	}
	x, y = v.headingTip(0, 0, math.Pi/2, 10)
	if math.Abs(float64(x)-110) > 1e-4 || math.Abs(float64(y)-100) > 1e-4 {
		t.Errorf("heading pi/2 should point right, got (%.1f, %.1f)", x, y)
	}
}

func TestSurfaceColor(t *testing.T) {
	road, err := surface.NewSurface("r", surface.TagRoad, "POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))", 0.1, -1)
	if err != nil {
		t.Fatal(err)
	}
	low, _ := surface.NewSurface("l", surface.TagSolid, "POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))", 10, 0)
	high, _ := surface.NewSurface("h", surface.TagSolid, "POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))", 100, 0)

	if surfaceColor(road) != roadColor {
		t.Errorf("road color")
	}
	if surfaceColor(low).R >= surfaceColor(high).R {
		t.Errorf("taller blocks should be lighter")
	}
}

func TestPaletteFallsBack(t *testing.T) {
	p := palette{}
	if c := p.color("#32CD32"); c.R != 0x32 || c.G != 0xCD || c.B != 0x32 {
		t.Errorf("parsed %v", c)
	}
	if c := p.color("nope"); c != fallbackRGB {
		t.Errorf("bad color should fall back, got %v", c)
	}
	if len(p) != 2 {
		t.Errorf("palette should cache both entries, has %d", len(p))
	}
}

func TestHUDLines(t *testing.T) {
	if got := hudLines(scenes.Snapshot{Loading: true, LevelID: "archway"}, ""); len(got) != 1 || !strings.Contains(got[0], "archway") {
		t.Errorf("loading hud: %v", got)
	}
	if got := hudLines(scenes.Snapshot{LoadError: "boom"}, ""); got[1] != "boom" {
		t.Errorf("error hud: %v", got)
	}

	snap := scenes.Snapshot{
		LevelID:     "shoreditch",
		Score:       4,
		TimeLeft:    41.2,
		WantedLevel: 1,
		Status:      "SUGAR RUSH",
		DrinkTimer:  3,
		Paused:      true,
	}
	got := strings.Join(hudLines(snap, "BUSTED with 2 deliveries"), "\n")
	for _, want := range []string{"score 4", "time 42", "wanted 1", "SUGAR RUSH", "drink 3.0s", "PAUSED", "last run: BUSTED"} {
		if !strings.Contains(got, want) {
			t.Errorf("hud missing %q:\n%s", want, got)
		}
	}
}
