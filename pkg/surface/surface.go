// Package surface 建模放置与 AI 进行射线检测的静态城市几何,
// 以及把射线结果转换为安全地面点的分类器
package surface

import (
	"fmt"
	"math"

	"github.com/decker502/courier/pkg/utils"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Tag 表面的语义角色, 由关卡加载器设置
type Tag int

const (
	TagRoad   Tag = iota // 可通行街道数据; 不可见但可被射线检测
	TagSolid             // 建筑和地面
	TagBorder            // 不可通过的地图边界墙
)

func (t Tag) String() string {
	switch t {
	case TagRoad:
		return "road"
	case TagSolid:
		return "solid"
	case TagBorder:
		return "border"
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// ParseTag 将清单中的名称映射为 Tag
func ParseTag(s string) (Tag, error) {
	switch s {
	case "road":
		return TagRoad, nil
	case "solid", "building", "floor":
		return TagSolid, nil
	case "border":
		return TagBorder, nil
	}
	return 0, fmt.Errorf("unknown surface tag %q", s)
}

// Surface 垂直棱柱: 地面平面上的轮廓(X/Z 映射到几何的 X/Y)
// 从 Base 拉伸到 Top
type Surface struct {
	ID        string
	Tag       Tag
	Footprint geom.Geometry
	Top       float64
	Base      float64

	// 地面平面上的轮廓包围盒, 用于快速排除
	minX, minZ, maxX, maxZ float64
	outline                [][][2]float64
}

// NewSurface 解析 WKT polygon 或 multipolygon 轮廓
func NewSurface(id string, tag Tag, footprintWKT string, top, base float64) (*Surface, error) {
	if top < base {
		return nil, fmt.Errorf("surface %s: top %.2f below base %.2f", id, top, base)
	}
	g, err := geom.UnmarshalWKT(footprintWKT)
	if err != nil {
		return nil, fmt.Errorf("surface %s: invalid footprint: %w", id, err)
	}

	var rings [][][2]float64
	switch g.Type() {
	case geom.TypePolygon:
		rings = append(rings, ringCoords(g.MustAsPolygon().ExteriorRing()))
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			rings = append(rings, ringCoords(mp.PolygonN(i).ExteriorRing()))
		}
	default:
		return nil, fmt.Errorf("surface %s: footprint must be a polygon, got %s", id, g.Type())
	}

	s := &Surface{
		ID:        id,
		Tag:       tag,
		Footprint: g,
		Top:       top,
		Base:      base,
		outline:   rings,
		minX:      math.Inf(1),
		minZ:      math.Inf(1),
		maxX:      math.Inf(-1),
		maxZ:      math.Inf(-1),
	}
	for _, ring := range rings {
		for _, p := range ring {
			s.minX = math.Min(s.minX, p[0])
			s.maxX = math.Max(s.maxX, p[0])
			s.minZ = math.Min(s.minZ, p[1])
			s.maxZ = math.Max(s.maxZ, p[1])
		}
	}
	if math.IsInf(s.minX, 1) {
		return nil, fmt.Errorf("surface %s: empty footprint", id)
	}
	return s, nil
}

func ringCoords(ring geom.LineString) [][2]float64 {
	seq := ring.Coordinates()
	out := make([][2]float64, 0, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		out = append(out, [2]float64{xy.X, xy.Y})
	}
	return out
}

// Outline 以 (x, z) 对返回外环, 用于调试绘制
func (s *Surface) Outline() [][][2]float64 {
	return s.outline
}

// Bounds 返回轮廓在地面平面上的包围盒
func (s *Surface) Bounds() (minX, minZ, maxX, maxZ float64) {
	return s.minX, s.minZ, s.maxX, s.maxZ
}

// Contains 检查 (x, z) 处的柱是否穿过轮廓
func (s *Surface) Contains(x, z float64) bool {
	if x < s.minX || x > s.maxX || z < s.minZ || z > s.maxZ {
		return false
	}
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: z}, Type: geom.DimXY})
	if err != nil {
		return false
	}
	return geom.Intersects(pt.AsGeometry(), s.Footprint)
}

// crossesSegment 检查地面线段 a→b 是否接触轮廓
func (s *Surface) crossesSegment(a, b utils.Vec3) bool {
	if math.Max(a.X, b.X) < s.minX || math.Min(a.X, b.X) > s.maxX ||
		math.Max(a.Z, b.Z) < s.minZ || math.Min(a.Z, b.Z) > s.maxZ {
		return false
	}
	seq := geom.NewSequence([]float64{a.X, a.Z, b.X, b.Z}, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		// a 与 b 的 XY 相同: 线段退化为一根柱
		return s.Contains(a.X, a.Z)
	}
	return geom.Intersects(ls.AsGeometry(), s.Footprint)
}

// Set 一个已加载关卡的碰撞表面列表。关卡加载时整体重建,
// 帧运行期间不会修改
type Set struct {
	Road  []*Surface
	Solid []*Surface // solid 和 border 表面
}

// NewSet 按标签拆分表面
func NewSet(surfaces []*Surface) *Set {
	set := &Set{}
	for _, s := range surfaces {
		if s.Tag == TagRoad {
			set.Road = append(set.Road, s)
		} else {
			set.Solid = append(set.Solid, s)
		}
	}
	return set
}

// HasRoads 关卡是否包含道路数据
func (s *Set) HasRoads() bool {
	return s != nil && len(s.Road) > 0
}

// Colliders 返回阻挡移动并支撑行走的表面
func (s *Set) Colliders() []*Surface {
	if s == nil {
		return nil
	}
	return s.Solid
}

// All 返回道路及其后的碰撞体
func (s *Set) All() []*Surface {
	if s == nil {
		return nil
	}
	all := make([]*Surface, 0, len(s.Road)+len(s.Solid))
	all = append(all, s.Road...)
	return append(all, s.Solid...)
}

// Len 返回表面总数
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Road) + len(s.Solid)
}
