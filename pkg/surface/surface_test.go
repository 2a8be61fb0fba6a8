package surface

import (
	"fmt"
	"math"
	"testing"

	"github.com/decker502/courier/pkg/utils"
)

func square(minX, minZ, maxX, maxZ float64) string {
	return fmt.Sprintf("POLYGON((%g %g, %g %g, %g %g, %g %g, %g %g))",
		minX, minZ, maxX, minZ, maxX, maxZ, minX, maxZ, minX, minZ)
}

func squareRing(inner, outer float64) string {
	return fmt.Sprintf("POLYGON((%g %g, %g %g, %g %g, %g %g, %g %g),(%g %g, %g %g, %g %g, %g %g, %g %g))",
		-outer, -outer, outer, -outer, outer, outer, -outer, outer, -outer, -outer,
		-inner, -inner, inner, -inner, inner, inner, -inner, inner, -inner, -inner)
}

func mustSurface(t *testing.T, id string, tag Tag, wkt string, top, base float64) *Surface {
	t.Helper()
	s, err := NewSurface(id, tag, wkt, top, base)
	if err != nil {
		t.Fatalf("NewSurface(%s): %v", id, err)
	}
	return s
}

func TestNewSurfaceRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		wkt  string
		top  float64
		base float64
	}{
		{"invalid wkt", "POLYGON((0 0, 1", 1, 0},
		{"not a polygon", "POINT(1 2)", 1, 0},
		{"inverted prism", square(0, 0, 1, 1), -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSurface("x", TagSolid, tt.wkt, tt.top, tt.base); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestSurfaceBoundsAndContains(t *testing.T) {
	s := mustSurface(t, "b", TagSolid, square(-5, 10, 5, 20), 30, 0)

	minX, minZ, maxX, maxZ := s.Bounds()
	if minX != -5 || minZ != 10 || maxX != 5 || maxZ != 20 {
		t.Errorf("Bounds: got (%v,%v,%v,%v)", minX, minZ, maxX, maxZ)
	}
	if !s.Contains(0, 15) {
		t.Errorf("Contains(0,15): got false, want true")
	}
	if s.Contains(0, 0) {
		t.Errorf("Contains(0,0): got true, want false")
	}
	if len(s.Outline()) != 1 {
		t.Errorf("Outline rings: got %d, want 1", len(s.Outline()))
	}
}

func TestSurfaceWithHole(t *testing.T) {
	s := mustSurface(t, "ring", TagRoad, squareRing(10, 20), 0, -1)
	if s.Contains(0, 0) {
		t.Errorf("hole should not be contained")
	}
	if !s.Contains(15, 0) {
		t.Errorf("ring should contain (15,0)")
	}
}

func TestNewSetSplitsByTag(t *testing.T) {
	road := mustSurface(t, "r", TagRoad, square(0, 0, 1, 1), 0, -1)
	floor := mustSurface(t, "f", TagSolid, square(0, 0, 1, 1), 0, -1)
	border := mustSurface(t, "w", TagBorder, square(0, 0, 1, 1), 50, -10)

	set := NewSet([]*Surface{road, floor, border})
	if !set.HasRoads() {
		t.Errorf("HasRoads: got false")
	}
	if len(set.Colliders()) != 2 {
		t.Errorf("Colliders: got %d, want 2", len(set.Colliders()))
	}
	if set.Len() != 3 || len(set.All()) != 3 {
		t.Errorf("Len: got %d", set.Len())
	}

	var empty *Set
	if empty.HasRoads() || empty.Len() != 0 || empty.All() != nil {
		t.Errorf("nil set should behave as empty")
	}
}

func TestParseTag(t *testing.T) {
	for in, want := range map[string]Tag{"road": TagRoad, "building": TagSolid, "floor": TagSolid, "border": TagBorder} {
		got, err := ParseTag(in)
		if err != nil || got != want {
			t.Errorf("ParseTag(%q): got %v, %v", in, got, err)
		}
	}
	if _, err := ParseTag("DATA_ROADS"); err == nil {
		t.Errorf("ParseTag should reject asset names")
	}
}

func TestCastDownOrdersNearestFirst(t *testing.T) {
	floor := mustSurface(t, "floor", TagSolid, square(-100, -100, 100, 100), 0, -1)
	roof := mustSurface(t, "roof", TagSolid, square(-10, -10, 10, 10), 40, 0)
	road := mustSurface(t, "road", TagRoad, square(-100, -2, 100, 2), 0.1, -1)

	hits := CastDown(utils.V3(0, 500, 0), []*Surface{floor, road, roof})
	if len(hits) != 3 {
		t.Fatalf("hits: got %d, want 3", len(hits))
	}
	want := []string{"roof", "road", "floor"}
	for i, id := range want {
		if hits[i].Surface.ID != id {
			t.Errorf("hit %d: got %s, want %s", i, hits[i].Surface.ID, id)
		}
	}
	if hits[0].Distance != 460 {
		t.Errorf("distance: got %v, want 460", hits[0].Distance)
	}
}

func TestCastDownSkipsSurfacesAboveOrigin(t *testing.T) {
	roof := mustSurface(t, "roof", TagSolid, square(-10, -10, 10, 10), 40, 0)
	floor := mustSurface(t, "floor", TagSolid, square(-100, -100, 100, 100), 0, -1)

	hits := CastDown(utils.V3(0, 20, 0), []*Surface{roof, floor})
	if len(hits) != 1 || hits[0].Surface != floor {
		t.Fatalf("got %d hits, want only the floor", len(hits))
	}

	if h, ok := GroundHeight(50, 50, 10, []*Surface{roof, floor}); !ok || h != 0 {
		t.Errorf("GroundHeight: got %v, %v", h, ok)
	}
	if _, ok := GroundHeight(500, 500, 10, []*Surface{roof, floor}); ok {
		t.Errorf("GroundHeight off the map should miss")
	}
}

func TestCastAcross(t *testing.T) {
	wall := mustSurface(t, "wall", TagBorder, square(10, -5, 12, 5), 20, 0)
	surfaces := []*Surface{wall}

	hit, ok := CastAcross(utils.V3(0, 1.5, 0), utils.V3(1, 0, 0), 15, surfaces)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(hit.Distance-10) > 0.01 {
		t.Errorf("distance: got %v, want ~10", hit.Distance)
	}

	if _, ok := CastAcross(utils.V3(0, 1.5, 0), utils.V3(1, 0, 0), 5, surfaces); ok {
		t.Errorf("short cast should not reach the wall")
	}
	if _, ok := CastAcross(utils.V3(0, 25, 0), utils.V3(1, 0, 0), 15, surfaces); ok {
		t.Errorf("cast above the wall should pass")
	}
	if _, ok := CastAcross(utils.V3(0, 1.5, 0), utils.V3(-1, 0, 0), 15, surfaces); ok {
		t.Errorf("cast away from the wall should pass")
	}
	if _, ok := CastAcross(utils.V3(0, 1.5, 0), utils.Vec3{}, 15, surfaces); ok {
		t.Errorf("zero direction should never hit")
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultConfig(), utils.NewRand(7))
	road := &Surface{ID: "road", Tag: TagRoad}
	floor := &Surface{ID: "floor", Tag: TagSolid}
	roof := &Surface{ID: "roof", Tag: TagSolid}

	hit := func(s *Surface, y float64) Hit {
		return Hit{Surface: s, Point: utils.V3(0, y, 0), Distance: 500 - y}
	}

	tests := []struct {
		name     string
		hits     []Hit
		useRoads bool
		wantY    float64
		wantOK   bool
	}{
		{"road over floor", []Hit{hit(road, 0.1), hit(floor, 0)}, true, 0, true},
		{"road only", []Hit{hit(road, 3)}, true, 3, true},
		{"roof over road", []Hit{hit(roof, 80), hit(road, 0.1), hit(floor, 0)}, true, 0, false},
		{"floor without road", []Hit{hit(floor, 0)}, true, 0, false},
		{"band upper edge", []Hit{hit(floor, 50), hit(road, 0)}, true, 50, true},
		{"sunken floor", []Hit{hit(road, 0), hit(floor, -60)}, true, -60, false},
		{"no roads floor", []Hit{hit(floor, 5)}, false, 5, true},
		{"no roads band lower edge", []Hit{hit(floor, -50)}, false, -50, true},
		{"no roads roof", []Hit{hit(roof, 60), hit(floor, 0)}, false, 0, false},
		{"no hits", nil, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, ok := c.Classify(tt.hits, tt.useRoads)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && y != tt.wantY {
				t.Errorf("y: got %v, want %v", y, tt.wantY)
			}
		})
	}
}

func TestFindGroundPointStaysInAnnulus(t *testing.T) {
	floor := mustSurface(t, "floor", TagSolid, square(-4000, -4000, 4000, 4000), 0, -1)
	set := NewSet([]*Surface{floor})
	c := NewClassifier(DefaultConfig(), utils.NewRand(42))

	center := utils.V3(100, 0, -200)
	for i := 0; i < 200; i++ {
		p, ok := c.FindGroundPoint(Query{Center: center, MinRadius: 20, MaxRadius: 80}, set)
		if !ok {
			t.Fatalf("iteration %d: no point found on a flat map", i)
		}
		d := p.HorizontalDist(center)
		if d < 20-1e-9 || d > 80+1e-9 {
			t.Fatalf("distance %v outside [20, 80]", d)
		}
		if p.Y != 2.0 {
			t.Fatalf("y: got %v, want ground + clearance = 2", p.Y)
		}
		// 从点正上方向下的射线落在间隙范围内
		hits := CastDown(p.Add(utils.V3(0, 0.01, 0)), set.All())
		if len(hits) == 0 || hits[0].Distance > 2.0+0.01+1e-9 {
			t.Fatalf("point %v is not supported by ground", p)
		}
	}
}

func TestFindGroundPointDegenerateBand(t *testing.T) {
	floor := mustSurface(t, "floor", TagSolid, square(-4000, -4000, 4000, 4000), 0, -1)
	set := NewSet([]*Surface{floor})
	c := NewClassifier(DefaultConfig(), utils.NewRand(3))

	p, ok := c.FindGroundPoint(Query{MinRadius: 50, MaxRadius: 50}, set)
	if !ok {
		t.Fatalf("degenerate band should still be searchable")
	}
	if math.Abs(p.HorizontalDist(utils.Vec3{})-50) > 1e-9 {
		t.Errorf("distance: got %v, want 50", p.HorizontalDist(utils.Vec3{}))
	}
}

func TestFindGroundPointNeverOnRoof(t *testing.T) {
	floor := mustSurface(t, "floor", TagSolid, square(-4000, -4000, 4000, 4000), 0, -1)
	roads := mustSurface(t, "roads", TagRoad, squareRing(400, 600), 0.1, -1)
	roof := mustSurface(t, "roof", TagSolid, squareRing(600, 2000), 80, 0)
	set := NewSet([]*Surface{floor, roads, roof})

	cfg := DefaultConfig()
	cfg.MaxTries = 400
	c := NewClassifier(cfg, utils.NewRand(99))

	for i := 0; i < 50; i++ {
		p, ok := c.FindGroundPoint(Query{MinRadius: 400, MaxRadius: 1500}, set)
		if !ok {
			t.Fatalf("iteration %d: no road point found", i)
		}
		if math.Abs(p.X) > 600 || math.Abs(p.Z) > 600 {
			t.Fatalf("point %v lies under the roof", p)
		}
		if math.Max(math.Abs(p.X), math.Abs(p.Z)) < 400 {
			t.Fatalf("point %v is off the road", p)
		}
		if p.Y != 2.0 {
			t.Fatalf("y: got %v, want street level + clearance", p.Y)
		}
	}
}

func TestFindGroundPointRespectsMapLimit(t *testing.T) {
	floor := mustSurface(t, "floor", TagSolid, square(-5000, -5000, 5000, 5000), 0, -1)
	set := NewSet([]*Surface{floor})
	cfg := DefaultConfig()
	cfg.MapLimit = 100
	c := NewClassifier(cfg, utils.NewRand(11))

	for i := 0; i < 100; i++ {
		p, ok := c.FindGroundPoint(Query{Center: utils.V3(90, 0, 0), MinRadius: 0, MaxRadius: 50}, set)
		if !ok {
			continue
		}
		if math.Abs(p.X) > 100 || math.Abs(p.Z) > 100 {
			t.Fatalf("point %v outside the map limit", p)
		}
	}
}

func TestFindGroundPointExhaustsTries(t *testing.T) {
	roof := mustSurface(t, "roof", TagSolid, square(-4000, -4000, 4000, 4000), 80, 0)
	set := NewSet([]*Surface{roof})
	c := NewClassifier(DefaultConfig(), utils.NewRand(5))

	if p, ok := c.FindGroundPoint(Query{MaxRadius: 500}, set); ok {
		t.Errorf("roof-only map: got %v, want no point", p)
	}
	if _, ok := c.FindGroundPoint(Query{MaxRadius: 500}, NewSet(nil)); ok {
		t.Errorf("empty surface set should fail")
	}
}

func TestFindGroundPointIsDeterministicForSeed(t *testing.T) {
	floor := mustSurface(t, "floor", TagSolid, square(-4000, -4000, 4000, 4000), 0, -1)
	set := NewSet([]*Surface{floor})

	a := NewClassifier(DefaultConfig(), utils.NewRand(1234))
	b := NewClassifier(DefaultConfig(), utils.NewRand(1234))
	q := Query{Center: utils.V3(10, 0, 10), MinRadius: 400, MaxRadius: 1500}

	pa, _ := a.FindGroundPoint(q, set)
	pb, _ := b.FindGroundPoint(q, set)
	if pa != pb {
		t.Errorf("same seed gave %v and %v", pa, pb)
	}
}

func TestFindWithTiers(t *testing.T) {
	// 道路只存在于远离请求圆盘的地方
	floor := mustSurface(t, "floor", TagSolid, square(-4000, -4000, 4000, 4000), 0, -1)
	roads := mustSurface(t, "roads", TagRoad, square(-4000, -4000, 4000, -3000), 0.1, -1)
	set := NewSet([]*Surface{floor, roads})

	cfg := DefaultConfig()
	cfg.MaxTries = 20
	c := NewClassifier(cfg, utils.NewRand(8))

	tiers := []Tier{
		{Name: "strict", Query: Query{MaxRadius: 100}},
		{Name: "emergency", Query: Query{MaxRadius: 100, ExcludeRoads: true}},
	}
	p, idx, ok := c.FindWithTiers(set, tiers...)
	if !ok || idx != 1 {
		t.Fatalf("got tier %d ok=%v, want emergency tier", idx, ok)
	}
	if p.HorizontalDist(utils.Vec3{}) > 100 {
		t.Errorf("emergency point %v outside its disc", p)
	}

	if _, idx, ok := c.FindWithTiers(NewSet(nil), tiers...); ok || idx != -1 {
		t.Errorf("empty set: got %d, %v", idx, ok)
	}

	std := c.StandardTiers(utils.V3(5, 0, 5), 3000)
	if len(std) != 3 || std[0].Query.ExcludeRoads || !std[2].Query.ExcludeRoads {
		t.Errorf("StandardTiers: unexpected chain %+v", std)
	}
	if std[1].Query.MaxRadius != cfg.MapLimit {
		t.Errorf("relaxed tier radius: got %v, want %v", std[1].Query.MaxRadius, cfg.MapLimit)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	bad := []Config{
		{MaxTries: 0, MapLimit: 1, RayHeight: 500, GroundMax: 50},
		{MaxTries: 1, MapLimit: 0, RayHeight: 500, GroundMax: 50},
		{MaxTries: 1, MapLimit: 1, RayHeight: 500, GroundMin: 10, GroundMax: 5},
		{MaxTries: 1, MapLimit: 1, RayHeight: 20, GroundMax: 50},
		{MaxTries: 1, MapLimit: 1, RayHeight: 500, GroundMax: 50, Clearance: -1},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestMultiPolygonFootprint(t *testing.T) {
	s := mustSurface(t, "twin", TagSolid, "MULTIPOLYGON(((0 0, 10 0, 10 10, 0 10, 0 0)),((20 0, 30 0, 30 10, 20 10, 20 0)))", 5, 0)
	if len(s.Outline()) != 2 {
		t.Fatalf("outline rings: got %d, want 2", len(s.Outline()))
	}
	if !s.Contains(25, 5) || s.Contains(15, 5) {
		t.Errorf("Contains wrong across the gap between parts")
	}
}

func TestCrossesSegmentEdgeCases(t *testing.T) {
	s := mustSurface(t, "wall", TagSolid, square(10, -5, 20, 5), 10, 0)
	if !s.crossesSegment(utils.V3(15, 0, 0), utils.V3(15, 3, 0)) {
		t.Errorf("a vertical segment inside the footprint should touch it")
	}
	if s.crossesSegment(utils.V3(0, 0, 0), utils.V3(0, 3, 0)) {
		t.Errorf("a vertical segment outside the footprint should not touch it")
	}
	if !s.crossesSegment(utils.V3(0, 0, 0), utils.V3(30, 0, 0)) {
		t.Errorf("a segment through the footprint should touch it")
	}
	if s.Contains(math.NaN(), 0) {
		t.Errorf("a NaN column must not be inside")
	}
}
