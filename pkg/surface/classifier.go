package surface

import (
	"fmt"
	"math"

	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/utils"
	"github.com/rs/zerolog"
)

// Query 描述一个生成搜索圆盘, 每次调用时构建
type Query struct {
	Center       utils.Vec3
	MinRadius    float64
	MaxRadius    float64
	ExcludeRoads bool
}

// Tier 回退搜索链中的一级
type Tier struct {
	Name  string
	Query Query
}

// Config 分类器参数, 零值字段回退到 DefaultConfig
type Config struct {
	MaxTries  int     `yaml:"maxTries"`
	MapLimit  float64 `yaml:"mapLimit"`
	RayHeight float64 `yaml:"rayHeight"`
	GroundMin float64 `yaml:"groundMin"`
	GroundMax float64 `yaml:"groundMax"`
	Clearance float64 `yaml:"clearance"`
}

// DefaultConfig 返回默认参数
func DefaultConfig() Config {
	return Config{
		MaxTries:  50,
		MapLimit:  4000,
		RayHeight: 500,
		GroundMin: -50,
		GroundMax: 50,
		Clearance: 2.0,
	}
}

// Validate 检查配置是否可能接受任何点
func (c Config) Validate() error {
	if c.MaxTries <= 0 {
		return fmt.Errorf("maxTries must be positive, got %d", c.MaxTries)
	}
	if c.MapLimit <= 0 {
		return fmt.Errorf("mapLimit must be positive, got %.2f", c.MapLimit)
	}
	if c.GroundMin > c.GroundMax {
		return fmt.Errorf("ground band is empty: [%.2f, %.2f]", c.GroundMin, c.GroundMax)
	}
	if c.RayHeight <= c.GroundMax {
		return fmt.Errorf("rayHeight %.2f must be above the ground band (max %.2f)", c.RayHeight, c.GroundMax)
	}
	if c.Clearance < 0 {
		return fmt.Errorf("clearance must not be negative, got %.2f", c.Clearance)
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxTries == 0 {
		c.MaxTries = d.MaxTries
	}
	if c.MapLimit == 0 {
		c.MapLimit = d.MapLimit
	}
	if c.RayHeight == 0 {
		c.RayHeight = d.RayHeight
	}
	if c.GroundMin == 0 && c.GroundMax == 0 {
		c.GroundMin, c.GroundMax = d.GroundMin, d.GroundMax
	}
	if c.Clearance == 0 {
		c.Clearance = d.Clearance
	}
	return c
}

// InBand 检查 y 是否位于有效地面高度区间内(闭区间)
func (c Config) InBand(y float64) bool {
	return y >= c.GroundMin && y <= c.GroundMax
}

// Random 采样随机源, *utils.Rand 和 *math/rand/v2.Rand 都满足
type Random interface {
	Float64() float64
}

// Classifier 通过垂直射线查找可行走的地面点
type Classifier struct {
	cfg    Config
	rng    Random
	logger zerolog.Logger
}

// NewClassifier 创建分类器, rng 为 nil 时使用固定种子的随机源
func NewClassifier(cfg Config, rng Random) *Classifier {
	if rng == nil {
		rng = utils.NewRand(1)
	}
	return &Classifier{
		cfg:    cfg.withDefaults(),
		rng:    rng,
		logger: logging.For("SurfaceClassifier"),
	}
}

// Config 返回生效的配置
func (c *Classifier) Config() Config {
	return c.cfg
}

// SetRandom 替换采样随机源
func (c *Classifier) SetRandom(rng Random) {
	if rng != nil {
		c.rng = rng
	}
}

// Sample 在查询圆环内抽取一个候选柱
func (c *Classifier) Sample(q Query) (x, z float64) {
	minR, maxR := normalizeBand(q.MinRadius, q.MaxRadius)
	radius := minR + c.rng.Float64()*(maxR-minR)
	angle := c.rng.Float64() * 2 * math.Pi
	return q.Center.X + math.Cos(angle)*radius, q.Center.Z + math.Sin(angle)*radius
}

func normalizeBand(minR, maxR float64) (float64, float64) {
	if minR < 0 {
		minR = 0
	}
	if maxR < 0 {
		maxR = 0
	}
	if minR > maxR {
		minR, maxR = maxR, minR
	}
	return minR, maxR
}

// FindGroundPoint 在查询圆盘内寻找街道高度的地面点。
// 返回的点会抬高配置的间隙。所有尝试用完时 ok 为 false
func (c *Classifier) FindGroundPoint(q Query, surfaces *Set) (utils.Vec3, bool) {
	if surfaces.Len() == 0 {
		return utils.Vec3{}, false
	}
	useRoads := !q.ExcludeRoads && surfaces.HasRoads()
	candidates := surfaces.Colliders()
	if useRoads {
		candidates = surfaces.All()
	}

	for try := 0; try < c.cfg.MaxTries; try++ {
		x, z := c.Sample(q)
		if math.Abs(x) > c.cfg.MapLimit || math.Abs(z) > c.cfg.MapLimit {
			continue
		}
		hits := CastDown(utils.Vec3{X: x, Y: c.cfg.RayHeight, Z: z}, candidates)
		ground, ok := c.Classify(hits, useRoads)
		if !ok {
			continue
		}
		return utils.Vec3{X: x, Y: ground + c.cfg.Clearance, Z: z}, true
	}
	return utils.Vec3{}, false
}

// Classify 判断按由近到远排序的命中列表是否为街道地面,
// 并返回其高度。
//
// 有道路时, 柱下必须存在道路, 且最上方的非道路命中
// (没有其他命中时即道路本身)必须在高度区间内。
// 没有道路时, 第一个命中必须在区间内。两种模式下
// 第一个命中高于区间即为屋顶, 该柱被拒绝
func (c *Classifier) Classify(hits []Hit, useRoads bool) (float64, bool) {
	if len(hits) == 0 {
		return 0, false
	}
	if hits[0].Point.Y > c.cfg.GroundMax {
		return 0, false
	}
	if !useRoads {
		y := hits[0].Point.Y
		return y, c.cfg.InBand(y)
	}

	var road, top *Hit
	for i := range hits {
		if hits[i].Surface.Tag == TagRoad {
			if road == nil {
				road = &hits[i]
			}
		} else if top == nil {
			top = &hits[i]
		}
	}
	if road == nil {
		return 0, false
	}
	if top == nil {
		top = road
	}
	y := top.Point.Y
	return y, c.cfg.InBand(y)
}

// FindWithTiers 依次执行每一级, 返回第一次成功的结果
// 以及产生它的级别索引
func (c *Classifier) FindWithTiers(surfaces *Set, tiers ...Tier) (utils.Vec3, int, bool) {
	for i, tier := range tiers {
		if p, ok := c.FindGroundPoint(tier.Query, surfaces); ok {
			if i > 0 {
				c.logger.Debug().Str("tier", tier.Name).Int("index", i).Msg("spawn resolved by fallback tier")
			}
			return p, i, true
		}
		c.logger.Debug().Str("tier", tier.Name).
			Float64("min", tier.Query.MinRadius).Float64("max", tier.Query.MaxRadius).
			Msg("spawn tier exhausted")
	}
	return utils.Vec3{}, -1, false
}

// StandardTiers 构建 严格 → 放宽 → 应急 搜索链: 在请求圆盘内搜索道路,
// 在整张地图上搜索道路, 以及在请求圆盘内忽略道路搜索
func (c *Classifier) StandardTiers(center utils.Vec3, maxRadius float64) []Tier {
	return []Tier{
		{Name: "strict", Query: Query{Center: center, MinRadius: 0, MaxRadius: maxRadius}},
		{Name: "relaxed", Query: Query{Center: utils.Vec3{}, MinRadius: 0, MaxRadius: c.cfg.MapLimit}},
		{Name: "emergency", Query: Query{Center: center, MinRadius: 0, MaxRadius: maxRadius, ExcludeRoads: true}},
	}
}
