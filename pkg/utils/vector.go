package utils

import "math"

// Vec3 世界空间中的点或方向。Y 轴向上, X/Z 为地面平面
type Vec3 struct {
	X, Y, Z float64
}

// V3 是 Vec3{x, y, z} 的简写
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Len 返回欧氏长度
func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist 返回 v 与 o 之间的三维距离
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// HorizontalDist 忽略垂直分量的距离
func (v Vec3) HorizontalDist(o Vec3) float64 {
	return math.Hypot(v.X-o.X, v.Z-o.Z)
}

// Normalize 返回 v 的单位向量, v 为零向量时返回零向量
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat 去掉垂直分量
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// AngleTo 返回 v 与 o 之间的夹角(弧度, 0..π)。
// 长度为零的输入返回 0
func (v Vec3) AngleTo(o Vec3) float64 {
	d := v.Len() * o.Len()
	if d == 0 {
		return 0
	}
	return math.Acos(Clamp(v.Dot(o)/d, -1, 1))
}

// Lerp 按系数 t 将 v 移向 o, 不对 t 做限制
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// RotateY 绕垂直轴旋转 angle 弧度,
// 与 HeadingVector 的偏航约定一致
func (v Vec3) RotateY(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// HeadingVector 返回偏航角对应的前向单位向量。
// 朝向 0 指向 +Z
func HeadingVector(heading float64) Vec3 {
	s, c := math.Sincos(heading)
	return Vec3{X: s, Z: c}
}

// HeadingTo 返回在地面平面上从一点朝向另一点的偏航角
func HeadingTo(from, to Vec3) float64 {
	return math.Atan2(to.X-from.X, to.Z-from.Z)
}
