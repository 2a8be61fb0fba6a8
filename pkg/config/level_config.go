package config

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/utils"
	"gopkg.in/yaml.v3"
)

// LevelConfig 描述一张城市地图。表面可以显式列出,
// 也可以由街道网格生成, 或两者兼有
//
// 文件: data/levels/<id>.yaml
type LevelConfig struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Surfaces    []SurfaceConfig `yaml:"surfaces"`
	Grid        *StreetGrid     `yaml:"grid"`
}

// SurfaceConfig 一个手工放置的棱柱
type SurfaceConfig struct {
	ID        string  `yaml:"id"`
	Tag       string  `yaml:"tag"`       // road、solid(建筑/地面)、border
	Footprint string  `yaml:"footprint"` // X/Z 平面上的 WKT 多边形
	Top       float64 `yaml:"top"`
	Base      float64 `yaml:"base"`
}

// StreetGrid 以原点为中心生成曼哈顿式街区布局。
// 一个街区周期为 RoadWidth + 2*SidewalkWidth + BlockInner
type StreetGrid struct {
	Extent        float64 `yaml:"extent"` // 地图半边长
	RoadWidth     float64 `yaml:"roadWidth"`
	SidewalkWidth float64 `yaml:"sidewalkWidth"`
	BlockInner    float64 `yaml:"blockInner"`
	RoadHeight    float64 `yaml:"roadHeight"`
	MinHeight     float64 `yaml:"minHeight"`
	MaxHeight     float64 `yaml:"maxHeight"`
	PlazaChance   float64 `yaml:"plazaChance"` // 街区没有建筑的概率
	BorderHeight  float64 `yaml:"borderHeight"`
	Seed          uint64  `yaml:"seed"`
}

// Pattern 返回街区周期
func (g *StreetGrid) Pattern() float64 {
	return g.RoadWidth + 2*g.SidewalkWidth + g.BlockInner
}

// ParseLevelConfig 解析并校验关卡清单
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}
	applyLevelDefaults(&levelConfig)
	if err := levelConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid level config %q: %w", levelConfig.ID, err)
	}
	return &levelConfig, nil
}

// LoadLevelConfig 从 fsys 读取关卡清单
func LoadLevelConfig(fsys fs.FS, path string) (*LevelConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", path, err)
	}
	cfg, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyLevelDefaults(cfg *LevelConfig) {
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if g := cfg.Grid; g != nil {
		if g.RoadHeight == 0 {
			g.RoadHeight = 0.1
		}
		if g.BorderHeight == 0 {
			g.BorderHeight = 100
		}
		if g.Seed == 0 {
			g.Seed = 1
		}
	}
}

// Validate 校验清单, 不构建几何体
func (c *LevelConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("level ID is required")
	}
	if len(c.Surfaces) == 0 && c.Grid == nil {
		return fmt.Errorf("level needs surfaces or a grid")
	}
	for i, s := range c.Surfaces {
		if s.Footprint == "" {
			return fmt.Errorf("surface %d (%s): footprint is required", i, s.ID)
		}
		if _, err := surface.ParseTag(s.Tag); err != nil {
			return fmt.Errorf("surface %d (%s): %w", i, s.ID, err)
		}
		if s.Top < s.Base {
			return fmt.Errorf("surface %d (%s): top below base", i, s.ID)
		}
	}
	if g := c.Grid; g != nil {
		if g.Extent <= 0 || g.RoadWidth <= 0 || g.BlockInner <= 0 || g.SidewalkWidth < 0 {
			return fmt.Errorf("grid: extent, roadWidth and blockInner must be positive")
		}
		if g.MinHeight > g.MaxHeight {
			return fmt.Errorf("grid: minHeight(%.1f) > maxHeight(%.1f)", g.MinHeight, g.MaxHeight)
		}
		if g.PlazaChance < 0 || g.PlazaChance > 1 {
			return fmt.Errorf("grid: plazaChance must be in [0, 1]")
		}
	}
	return nil
}

// BuildSurfaces 将清单转换为带标签的碰撞表面
func (c *LevelConfig) BuildSurfaces() ([]*surface.Surface, error) {
	var out []*surface.Surface
	for i, sc := range c.Surfaces {
		tag, err := surface.ParseTag(sc.Tag)
		if err != nil {
			return nil, err
		}
		id := sc.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", c.ID, i)
		}
		s, err := surface.NewSurface(id, tag, sc.Footprint, sc.Top, sc.Base)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if c.Grid != nil {
		generated, err := c.Grid.Generate(c.ID)
		if err != nil {
			return nil, fmt.Errorf("grid: %w", err)
		}
		out = append(out, generated...)
	}
	return out, nil
}

// Generate 布置地面、道路、建筑街区和边界墙
func (g *StreetGrid) Generate(prefix string) ([]*surface.Surface, error) {
	var out []*surface.Surface
	add := func(id string, tag surface.Tag, minX, minZ, maxX, maxZ, top, base float64) error {
		s, err := surface.NewSurface(prefix+"_"+id, tag, rectWKT(minX, minZ, maxX, maxZ), top, base)
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}

	e := g.Extent
	if err := add("ground", surface.TagSolid, -e, -e, e, e, 0, -1); err != nil {
		return nil, err
	}

	pattern := g.Pattern()
	var lines []float64
	for p := -e; p+g.RoadWidth <= e; p += pattern {
		lines = append(lines, p)
	}
	for i, p := range lines {
		if err := add(fmt.Sprintf("road_x%d", i), surface.TagRoad, p, -e, p+g.RoadWidth, e, g.RoadHeight, -1); err != nil {
			return nil, err
		}
		if err := add(fmt.Sprintf("road_z%d", i), surface.TagRoad, -e, p, e, p+g.RoadWidth, g.RoadHeight, -1); err != nil {
			return nil, err
		}
	}

	rng := utils.NewRand(g.Seed)
	inset := g.RoadWidth + g.SidewalkWidth
	for ix, x := range lines {
		for iz, z := range lines {
			minX, minZ := x+inset, z+inset
			maxX, maxZ := minX+g.BlockInner, minZ+g.BlockInner
			if maxX > e || maxZ > e {
				continue
			}
			if rng.Float64() < g.PlazaChance {
				continue
			}
			height := rng.RangeF(g.MinHeight, g.MaxHeight)
			if err := add(fmt.Sprintf("block_%d_%d", ix, iz), surface.TagSolid, minX, minZ, maxX, maxZ, height, 0); err != nil {
				return nil, err
			}
		}
	}

	const wall = 10.0
	walls := [][4]float64{
		{-e - wall, -e - wall, e + wall, -e},
		{-e - wall, e, e + wall, e + wall},
		{-e - wall, -e, -e, e},
		{e, -e, e + wall, e},
	}
	for i, w := range walls {
		if err := add(fmt.Sprintf("border_%d", i), surface.TagBorder, w[0], w[1], w[2], w[3], g.BorderHeight, -10); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func rectWKT(minX, minZ, maxX, maxZ float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "POLYGON((%g %g, %g %g, %g %g, %g %g, %g %g))",
		minX, minZ, maxX, minZ, maxX, maxZ, minX, maxZ, minX, minZ)
	return b.String()
}
