package systems

import (
	"fmt"
	"testing"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/entities"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

func rect(minX, minZ, maxX, maxZ float64) string {
	return fmt.Sprintf("POLYGON((%[1]g %[2]g, %[3]g %[2]g, %[3]g %[4]g, %[1]g %[4]g, %[1]g %[2]g))", minX, minZ, maxX, maxZ)
}

func squareRingWKT(inner, outer float64) string {
	return fmt.Sprintf("POLYGON((%[2]g %[2]g, %[1]g %[2]g, %[1]g %[1]g, %[2]g %[1]g, %[2]g %[2]g),(%[4]g %[4]g, %[4]g %[3]g, %[3]g %[3]g, %[3]g %[4]g, %[4]g %[4]g))",
		outer, -outer, inner, -inner)
}

func mustSurface(t *testing.T, id string, tag surface.Tag, wkt string, top, base float64) *surface.Surface {
	t.Helper()
	s, err := surface.NewSurface(id, tag, wkt, top, base)
	if err != nil {
		t.Fatalf("NewSurface(%s): %v", id, err)
	}
	return s
}

// flatCity 位于 y=0 的地面板, 上面覆盖同样大小的一条道路
func flatCity(t *testing.T, half float64) []*surface.Surface {
	t.Helper()
	return []*surface.Surface{
		mustSurface(t, "ground", surface.TagSolid, rect(-half, -half, half, half), 0, -1),
		mustSurface(t, "road", surface.TagRoad, rect(-half, -half, half, half), 0, -0.5),
	}
}

func newTestWorld(t *testing.T, surfaces []*surface.Surface) *World {
	t.Helper()
	w := NewWorld(ecs.NewEntityManager(), config.DefaultTuning(), 7)
	w.Surfaces = surface.NewSet(surfaces)
	return w
}

func addPlayer(t *testing.T, w *World, pos utils.Vec3) *components.TransformComponent {
	t.Helper()
	id, err := entities.NewPlayerEntity(w.EntityManager, pos)
	if err != nil {
		t.Fatal(err)
	}
	w.Player = id
	tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
	return tr
}

func addCamera(t *testing.T, w *World) *components.CameraComponent {
	t.Helper()
	id, err := entities.NewCameraEntity(w.EntityManager, utils.Vec3{}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	w.Camera = id
	cam, _ := ecs.GetComponent[*components.CameraComponent](w.EntityManager, id)
	return cam
}

func addOfficer(t *testing.T, w *World, pos utils.Vec3, heading float64) (ecs.EntityID, *components.TransformComponent, *components.PursuitComponent) {
	t.Helper()
	id, err := entities.NewOfficerEntity(w.EntityManager, pos, len(w.Officers()))
	if err != nil {
		t.Fatal(err)
	}
	tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
	tr.Heading = heading
	p, _ := ecs.GetComponent[*components.PursuitComponent](w.EntityManager, id)
	return id, tr, p
}

func animState(w *World, id ecs.EntityID) types.AnimState {
	anim, _ := ecs.GetComponent[*components.AnimationCommandComponent](w.EntityManager, id)
	if anim == nil {
		return ""
	}
	return anim.State
}
