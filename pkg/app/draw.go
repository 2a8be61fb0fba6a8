package app

import (
	"image/color"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/scenes"
	"github.com/decker502/courier/pkg/surface"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const markerSize = 6

func (a *App) drawSurfaces(screen *ebiten.Image, v view, set *surface.Set) {
	for _, s := range set.All() {
		minX, minZ, maxX, maxZ := s.Bounds()
		if !v.visible(minX, minZ, maxX, maxZ) {
			continue
		}
		// 地面板覆盖整张地图, 会遮住所有内容
		if s.Tag == surface.TagSolid && s.Top <= 0 {
			continue
		}
		clr := surfaceColor(s)
		for _, ring := range s.Outline() {
			for i := 1; i < len(ring); i++ {
				x0, y0 := v.toScreen(ring[i-1][0], ring[i-1][1])
				x1, y1 := v.toScreen(ring[i][0], ring[i][1])
				vector.StrokeLine(screen, x0, y0, x1, y1, 1, clr, false)
			}
		}
	}
}

func (a *App) drawEntities(screen *ebiten.Image, v view, snap scenes.Snapshot, assets *game.LevelAssets) {
	for _, p := range snap.Powerups {
		a.drawMarker(screen, v, p, assets, markerSize/2)
	}
	if snap.Beacon.ID != 0 {
		a.drawMarker(screen, v, snap.Beacon, assets, markerSize*2)
	}
	for _, o := range snap.Officers {
		a.drawMarker(screen, v, o, assets, markerSize)
		x, y := v.toScreen(o.Position.X, o.Position.Z)
		if o.State == components.StateChase.String() {
			vector.StrokeCircle(screen, x, y, markerSize*2, 1, color.RGBA{R: 0xff, A: 0xff}, true)
		}
	}
	if snap.Player.ID != 0 {
		a.drawMarker(screen, v, snap.Player, assets, markerSize)
	}
}

// drawMarker 用模板颜色的方块加朝向刻度绘制实体
func (a *App) drawMarker(screen *ebiten.Image, v view, e scenes.EntityView, assets *game.LevelAssets, size float32) {
	clr := a.colors.color(assets.Template(e.Template).Primitive.Color)
	x, y := v.toScreen(e.Position.X, e.Position.Z)
	vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, clr, false)
	tx, ty := v.headingTip(e.Position.X, e.Position.Z, e.Heading, float64(size)*1.5)
	vector.StrokeLine(screen, x, y, tx, ty, 1, color.White, false)
}
