package config

import (
	"fmt"
	"io/fs"

	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
	"gopkg.in/yaml.v3"
)

// TuningConfig 保存所有玩法常量。yaml 中缺失的字段
// 保留 DefaultTuning 的值
//
// 文件: data/tuning.yaml
type TuningConfig struct {
	Classifier surface.Config  `yaml:"classifier"`
	Session    SessionTuning   `yaml:"session"`
	Placement  PlacementTuning `yaml:"placement"`
	Pursuit    PursuitTuning   `yaml:"pursuit"`
	Player     PlayerTuning    `yaml:"player"`
	Powerups   PowerupTuning   `yaml:"powerups"`
	Camera     CameraTuning    `yaml:"camera"`

	// MaxFrameDelta 单帧模拟时间上限(秒)
	MaxFrameDelta float64 `yaml:"maxFrameDelta"`
}

// WantedLevel 将分数阈值映射为警察配额
type WantedLevel struct {
	Score    int `yaml:"score"`
	Officers int `yaml:"officers"`
}

// SessionTuning 分数、计时器与增益
type SessionTuning struct {
	StartTime      float64       `yaml:"startTime"`
	TimeBonus      float64       `yaml:"timeBonus"`
	DeliveryRadius float64       `yaml:"deliveryRadius"`
	WantedLevels   []WantedLevel `yaml:"wantedLevels"`

	BikeMultiplier  float64 `yaml:"bikeMultiplier"`
	DrinkMultiplier float64 `yaml:"drinkMultiplier"`
	DrinkDuration   float64 `yaml:"drinkDuration"`
	// BikeDuration 自行车持续时间; 0 表示持续到重置
	BikeDuration float64 `yaml:"bikeDuration"`
}

// Band 以某个中心测量的距离区间
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PlacementTuning 放置服务使用的搜索区间
type PlacementTuning struct {
	PlayerSearchRadius float64    `yaml:"playerSearchRadius"`
	PlayerSpawnLift    float64    `yaml:"playerSpawnLift"`
	ResetSearchRadius  float64    `yaml:"resetSearchRadius"`
	ResetSpawnLift     float64    `yaml:"resetSpawnLift"`
	PlayerFallback     utils.Vec3 `yaml:"playerFallback"`

	BeaconBands          []Band  `yaml:"beaconBands"`
	BeaconFallbackOffset float64 `yaml:"beaconFallbackOffset"`

	EnemyBand         Band `yaml:"enemyBand"`
	PatrolRefreshBand Band `yaml:"patrolRefreshBand"`
	// EnemyRetryInterval 警察配额未满足时的重试间隔(秒)
	EnemyRetryInterval float64 `yaml:"enemyRetryInterval"`

	// PowerupRadiusFactor 道具搜索半径相对地图边界的缩放系数
	PowerupRadiusFactor float64 `yaml:"powerupRadiusFactor"`
	DebugPowerupBand    Band    `yaml:"debugPowerupBand"`
	InitialPowerups     int     `yaml:"initialPowerups"`
	ResetPowerups       int     `yaml:"resetPowerups"`

	FallFloor     float64 `yaml:"fallFloor"`
	RespawnRadius float64 `yaml:"respawnRadius"`
	RespawnLift   float64 `yaml:"respawnLift"`
}

// PursuitTuning 警察状态机参数
type PursuitTuning struct {
	RunSpeed      float64 `yaml:"runSpeed"`
	WalkSpeed     float64 `yaml:"walkSpeed"`
	VisionRadius  float64 `yaml:"visionRadius"`
	HearingRadius float64 `yaml:"hearingRadius"`
	FOVDegrees    float64 `yaml:"fovDegrees"`
	CatchRadius   float64 `yaml:"catchRadius"`
	// LoseFactor 乘以 VisionRadius 得到放弃追捕的距离
	LoseFactor float64 `yaml:"loseFactor"`

	PatrolBand      Band    `yaml:"patrolBand"`
	ArrivalRadius   float64 `yaml:"arrivalRadius"`
	IdleThreshold   float64 `yaml:"idleThreshold"`
	GroundLerpRate  float64 `yaml:"groundLerpRate"`
	GroundRayHeight float64 `yaml:"groundRayHeight"`
}

// PlayerTuning 玩家移动与物理参数
type PlayerTuning struct {
	BaseSpeed          float64 `yaml:"baseSpeed"`
	Gravity            float64 `yaml:"gravity"`
	JumpForce          float64 `yaml:"jumpForce"`
	TurnRate           float64 `yaml:"turnRate"` // 弧度/秒
	JoystickTurnFactor float64 `yaml:"joystickTurnFactor"`
	MoveDeadzone       float64 `yaml:"moveDeadzone"`
	FacingLerp         float64 `yaml:"facingLerp"`

	WallCheckHeight   float64 `yaml:"wallCheckHeight"`
	WallCheckDistance float64 `yaml:"wallCheckDistance"`
	GroundRayLift     float64 `yaml:"groundRayLift"`
	SnapDistance      float64 `yaml:"snapDistance"`
	SettleDistance    float64 `yaml:"settleDistance"`
	SettleRate        float64 `yaml:"settleRate"`
}

// KindWeight 道具随机表中的一项
type KindWeight struct {
	Kind   string  `yaml:"kind"`
	Weight float64 `yaml:"weight"`
}

// PowerupTuning 道具生成与拾取参数
type PowerupTuning struct {
	SpawnInterval float64      `yaml:"spawnInterval"`
	PickupRadius  float64      `yaml:"pickupRadius"`
	SpinRate      float64      `yaml:"spinRate"`
	Weights       []KindWeight `yaml:"weights"`
}

// CameraTuning 相机跟随与雾效参数
type CameraTuning struct {
	FollowOffset utils.Vec3 `yaml:"followOffset"`
	LookLift     float64    `yaml:"lookLift"`
	MapHeight    float64    `yaml:"mapHeight"`
	FollowFog    Band       `yaml:"followFog"`
	MapFog       Band       `yaml:"mapFog"`
	PositionLerp float64    `yaml:"positionLerp"`
	FogLerp      float64    `yaml:"fogLerp"`
}

// DefaultTuning 返回默认游戏常量
func DefaultTuning() *TuningConfig {
	return &TuningConfig{
		Classifier: surface.DefaultConfig(),
		Session: SessionTuning{
			StartTime:      90,
			TimeBonus:      30,
			DeliveryRadius: 10,
			WantedLevels: []WantedLevel{
				{Score: 3, Officers: 1},
				{Score: 5, Officers: 2},
			},
			BikeMultiplier:  1.8,
			DrinkMultiplier: 1.4,
			DrinkDuration:   15,
		},
		Placement: PlacementTuning{
			PlayerSearchRadius: 3000,
			PlayerSpawnLift:    5,
			ResetSearchRadius:  500,
			ResetSpawnLift:     2,
			PlayerFallback:     utils.V3(0, 20, 0),
			BeaconBands: []Band{
				{Min: 400, Max: 1500},
				{Min: 150, Max: 400},
				{Min: 50, Max: 150},
			},
			BeaconFallbackOffset: 100,
			EnemyBand:            Band{Min: 150, Max: 400},
			PatrolRefreshBand:    Band{Min: 100, Max: 300},
			EnemyRetryInterval:   1,
			PowerupRadiusFactor:  0.9,
			DebugPowerupBand:     Band{Min: 5, Max: 20},
			InitialPowerups:      100,
			ResetPowerups:        50,
			FallFloor:            -50,
			RespawnRadius:        200,
			RespawnLift:          5,
		},
		Pursuit: PursuitTuning{
			RunSpeed:        21,
			WalkSpeed:       8,
			VisionRadius:    60,
			HearingRadius:   10,
			FOVDegrees:      135,
			CatchRadius:     3.5,
			LoseFactor:      1.5,
			PatrolBand:      Band{Min: 10, Max: 40},
			ArrivalRadius:   2,
			IdleThreshold:   2,
			GroundLerpRate:  5,
			GroundRayHeight: 300,
		},
		Player: PlayerTuning{
			BaseSpeed:          20,
			Gravity:            -60,
			JumpForce:          30,
			TurnRate:           1.8,
			JoystickTurnFactor: 2,
			MoveDeadzone:       0.1,
			FacingLerp:         0.1,
			WallCheckHeight:    1.5,
			WallCheckDistance:  1.5,
			GroundRayLift:      5,
			SnapDistance:       0.5,
			SettleDistance:     1.5,
			SettleRate:         15,
		},
		Powerups: PowerupTuning{
			SpawnInterval: 10,
			PickupRadius:  2.5,
			SpinRate:      1,
			Weights: []KindWeight{
				{Kind: "bike", Weight: 0.3},
				{Kind: "drink", Weight: 0.3},
				{Kind: "armor_light", Weight: 0.2},
				{Kind: "armor_heavy", Weight: 0.2},
			},
		},
		Camera: CameraTuning{
			FollowOffset: utils.V3(0, 6, -10),
			LookLift:     2,
			MapHeight:    200,
			FollowFog:    Band{Min: 1500, Max: 3000},
			MapFog:       Band{Min: 150, Max: 800},
			PositionLerp: 0.1,
			FogLerp:      0.05,
		},
		MaxFrameDelta: 0.05,
	}
}

// ParseTuningConfig 在 DefaultTuning 之上解析调参 yaml 并校验
func ParseTuningConfig(data []byte) (*TuningConfig, error) {
	cfg := DefaultTuning()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}
	return cfg, nil
}

// LoadTuningConfig 从 fsys 读取并解析调参文件
func LoadTuningConfig(fsys fs.FS, path string) (*TuningConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning config %s: %w", path, err)
	}
	return ParseTuningConfig(data)
}

// Validate 检查数值范围
func (c *TuningConfig) Validate() error {
	if err := c.Classifier.Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if c.MaxFrameDelta <= 0 {
		return fmt.Errorf("maxFrameDelta must be positive, got %.3f", c.MaxFrameDelta)
	}

	s := c.Session
	if s.StartTime <= 0 {
		return fmt.Errorf("session.startTime must be positive, got %.1f", s.StartTime)
	}
	if s.DeliveryRadius <= 0 {
		return fmt.Errorf("session.deliveryRadius must be positive")
	}
	for i, lvl := range s.WantedLevels {
		if lvl.Officers < 0 {
			return fmt.Errorf("session.wantedLevels[%d]: negative officer count", i)
		}
		if i > 0 && lvl.Score <= s.WantedLevels[i-1].Score {
			return fmt.Errorf("session.wantedLevels must be sorted by strictly increasing score")
		}
	}
	if s.BikeMultiplier <= 0 || s.DrinkMultiplier <= 0 {
		return fmt.Errorf("session speed multipliers must be positive")
	}

	p := c.Placement
	if len(p.BeaconBands) == 0 {
		return fmt.Errorf("placement.beaconBands must not be empty")
	}
	bands := map[string]Band{
		"placement.enemyBand":         p.EnemyBand,
		"placement.patrolRefreshBand": p.PatrolRefreshBand,
		"placement.debugPowerupBand":  p.DebugPowerupBand,
		"pursuit.patrolBand":          c.Pursuit.PatrolBand,
	}
	for i, b := range p.BeaconBands {
		bands[fmt.Sprintf("placement.beaconBands[%d]", i)] = b
	}
	for name, b := range bands {
		if b.Min < 0 || b.Min > b.Max {
			return fmt.Errorf("%s invalid: min(%.1f) > max(%.1f) or negative", name, b.Min, b.Max)
		}
	}
	if p.EnemyRetryInterval <= 0 {
		return fmt.Errorf("placement.enemyRetryInterval must be positive")
	}
	if p.InitialPowerups < 0 || p.ResetPowerups < 0 {
		return fmt.Errorf("powerup burst sizes must not be negative")
	}

	a := c.Pursuit
	if a.HearingRadius < 0 || a.VisionRadius < a.HearingRadius {
		return fmt.Errorf("pursuit: need 0 <= hearingRadius <= visionRadius")
	}
	if a.FOVDegrees <= 0 || a.FOVDegrees > 360 {
		return fmt.Errorf("pursuit.fovDegrees must be in (0, 360], got %.1f", a.FOVDegrees)
	}
	if a.LoseFactor < 1 {
		return fmt.Errorf("pursuit.loseFactor must be >= 1, got %.2f", a.LoseFactor)
	}
	if a.CatchRadius <= 0 || a.RunSpeed <= 0 || a.WalkSpeed <= 0 {
		return fmt.Errorf("pursuit speeds and catch radius must be positive")
	}

	if c.Player.BaseSpeed <= 0 || c.Player.Gravity >= 0 {
		return fmt.Errorf("player: need baseSpeed > 0 and gravity < 0")
	}

	if c.Powerups.SpawnInterval <= 0 {
		return fmt.Errorf("powerups.spawnInterval must be positive")
	}
	total := 0.0
	for _, w := range c.Powerups.Weights {
		if _, err := types.ParsePowerupKind(w.Kind); err != nil {
			return fmt.Errorf("powerups.weights: %w", err)
		}
		if w.Weight < 0 {
			return fmt.Errorf("powerups.weights: negative weight for %s", w.Kind)
		}
		total += w.Weight
	}
	if total <= 0 {
		return fmt.Errorf("powerups.weights must sum to a positive value")
	}
	return nil
}

// OfficerQuota 返回给定分数对应的警察数量
func (s SessionTuning) OfficerQuota(score int) (level, officers int) {
	for i, lvl := range s.WantedLevels {
		if score >= lvl.Score {
			level, officers = i+1, lvl.Officers
		}
	}
	return level, officers
}
