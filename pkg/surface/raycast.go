package surface

import (
	"sort"

	"github.com/decker502/courier/pkg/utils"
)

// Hit 一次射线与表面的交点
type Hit struct {
	Surface  *Surface
	Point    utils.Vec3
	Distance float64
}

// CastDown 从 origin 向 -Y 发射垂直射线, 返回 origin 下方
// 覆盖该柱的所有表面顶面, 由近到远排序。
// 调用之间不保存状态
func CastDown(origin utils.Vec3, surfaces []*Surface) []Hit {
	var hits []Hit
	for _, s := range surfaces {
		if s.Top > origin.Y {
			continue
		}
		if !s.Contains(origin.X, origin.Z) {
			continue
		}
		hits = append(hits, Hit{
			Surface:  s,
			Point:    utils.Vec3{X: origin.X, Y: s.Top, Z: origin.Z},
			Distance: origin.Y - s.Top,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// GroundHeight 返回 (x, z) 处 fromY 以下最近的表面顶面高度
func GroundHeight(x, z, fromY float64, surfaces []*Surface) (float64, bool) {
	hits := CastDown(utils.Vec3{X: x, Y: fromY, Z: z}, surfaces)
	if len(hits) == 0 {
		return 0, false
	}
	return hits[0].Point.Y, true
}

// castSteps 限制定位进入距离的二分次数
const castSteps = 12

// CastAcross 从 origin 沿 dir(忽略 Y)发射水平射线, 最远 maxDist,
// 返回垂直范围包含 origin.Y 的最近表面。
// 距离通过二分求解, 精度为 maxDist/2^castSteps
func CastAcross(origin, dir utils.Vec3, maxDist float64, surfaces []*Surface) (Hit, bool) {
	d := dir.Flat().Normalize()
	if d == (utils.Vec3{}) || maxDist <= 0 {
		return Hit{}, false
	}
	end := origin.Add(d.Scale(maxDist))

	best := Hit{Distance: maxDist + 1}
	found := false
	for _, s := range surfaces {
		if origin.Y < s.Base || origin.Y > s.Top {
			continue
		}
		if !s.crossesSegment(origin, end) {
			continue
		}
		lo, hi := 0.0, maxDist
		if s.Contains(origin.X, origin.Z) {
			hi = 0
		}
		for i := 0; i < castSteps && hi-lo > 1e-6; i++ {
			mid := (lo + hi) / 2
			if s.crossesSegment(origin, origin.Add(d.Scale(mid))) {
				hi = mid
			} else {
				lo = mid
			}
		}
		if hi < best.Distance {
			best = Hit{Surface: s, Point: origin.Add(d.Scale(hi)), Distance: hi}
			found = true
		}
	}
	return best, found
}
