package app

import (
	"image/color"
	"math"

	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/utils"
)

// mapZoom 地图打开时的视图缩放
const mapZoom = 0.25

// view 将地面平面投影到屏幕, 北(+Z)朝上,
// 以焦点为中心
type view struct {
	focusX, focusZ float64
	scale          float64 // 每个世界单位的像素数
	width, height  int
}

func newView(focus utils.Vec3, scale float64, mapOpen bool, width, height int) view {
	if mapOpen {
		scale *= mapZoom
	}
	return view{focusX: focus.X, focusZ: focus.Z, scale: scale, width: width, height: height}
}

// toScreen 将世界坐标 (x, z) 映射到屏幕像素
func (v view) toScreen(x, z float64) (float32, float32) {
	sx := float64(v.width)/2 + (x-v.focusX)*v.scale
	sy := float64(v.height)/2 - (z-v.focusZ)*v.scale
	return float32(sx), float32(sy)
}

// visible 检查地面包围盒是否与屏幕重叠
func (v view) visible(minX, minZ, maxX, maxZ float64) bool {
	halfW := float64(v.width) / 2 / v.scale
	halfH := float64(v.height) / 2 / v.scale
	return maxX >= v.focusX-halfW && minX <= v.focusX+halfW &&
		maxZ >= v.focusZ-halfH && minZ <= v.focusZ+halfH
}

// headingTip 返回从 (x, z) 沿朝向前方 length 像素的屏幕点,
// 朝向 0 指向 +Z
func (v view) headingTip(x, z, heading, length float64) (float32, float32) {
	sx, sy := v.toScreen(x, z)
	return sx + float32(math.Sin(heading)*length), sy - float32(math.Cos(heading)*length)
}

var (
	roadColor   = color.RGBA{R: 0x3a, G: 0x3a, B: 0x40, A: 0xff}
	borderColor = color.RGBA{R: 0xb0, G: 0x30, B: 0x30, A: 0xff}
	fallbackRGB = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}
)

// surfaceColor 按高度为实体着色, 越高越亮
func surfaceColor(s *surface.Surface) color.RGBA {
	switch s.Tag {
	case surface.TagRoad:
		return roadColor
	case surface.TagBorder:
		return borderColor
	}
	t := utils.Clamp(s.Top/120, 0, 1)
	g := uint8(utils.Lerp(70, 200, t))
	return color.RGBA{R: g, G: g, B: uint8(utils.Lerp(80, 210, t)), A: 0xff}
}

// palette 缓存从 "#RRGGBB" 解析的模板颜色
type palette map[string]color.RGBA

func (p palette) color(hex string) color.RGBA {
	if c, ok := p[hex]; ok {
		return c
	}
	c, err := config.ParseHexColor(hex)
	if err != nil {
		c = fallbackRGB
	}
	p[hex] = c
	return c
}
