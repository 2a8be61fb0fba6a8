package systems

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/entities"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

// PlacementSystem 将玩家、信标、警察和道具放到街道高度的地面上。
// 每个操作要么找到分类通过的点, 要么使用明确的回退;
// 不会悄悄留在原点
type PlacementSystem struct {
	world  *World
	logger zerolog.Logger
}

// NewPlacementSystem 为 w 创建放置服务
func NewPlacementSystem(w *World) *PlacementSystem {
	return &PlacementSystem{
		world:  w,
		logger: logging.For("PlacementSystem"),
	}
}

func (ps *PlacementSystem) find(q surface.Query) (utils.Vec3, bool) {
	return ps.world.Classifier.FindGroundPoint(q, ps.world.Surfaces)
}

// PlacePlayer 以严格、放宽、应急三级在 center 周围搜索。
// 命中点抬高 lift; 全部失败时使用固定回退点。
// 垂直速度清零, 由重力落地。
// 首次调用时创建玩家实体
func (ps *PlacementSystem) PlacePlayer(center utils.Vec3, maxRadius, lift float64) utils.Vec3 {
	w := ps.world
	pos, tier, ok := w.Classifier.FindWithTiers(w.Surfaces, w.Classifier.StandardTiers(center, maxRadius)...)
	if ok {
		pos.Y += lift
	} else {
		pos = w.Tuning.Placement.PlayerFallback
		w.Metrics.SpawnFailure("player")
		ps.logger.Warn().Float64("radius", maxRadius).Msg("no ground for player, using fallback point")
	}
	ps.movePlayer(pos)
	ps.logger.Debug().Int("tier", tier).Float64("x", pos.X).Float64("y", pos.Y).Float64("z", pos.Z).Msg("player placed")
	return pos
}

func (ps *PlacementSystem) movePlayer(pos utils.Vec3) {
	w := ps.world
	if !w.EntityManager.Exists(w.Player) {
		id, err := entities.NewPlayerEntity(w.EntityManager, pos)
		if err != nil {
			ps.logger.Error().Err(err).Msg("failed to create player")
			return
		}
		w.Player = id
		return
	}
	if tr, ok := ecs.GetComponent[*components.TransformComponent](w.EntityManager, w.Player); ok {
		tr.Position = pos
	}
	if pc, ok := ecs.GetComponent[*components.PlayerComponent](w.EntityManager, w.Player); ok {
		pc.VerticalVelocity = 0
		pc.Grounded = false
	}
}

// PlaceBeacon 以玩家当前位置为基准移动信标,
// 先尝试远区间再尝试近区间。使用回退偏移时
// found 为 false
func (ps *PlacementSystem) PlaceBeacon() (pos utils.Vec3, found bool) {
	w := ps.world
	player := w.PlayerPosition()
	for _, band := range w.Tuning.Placement.BeaconBands {
		if p, ok := ps.find(surface.Query{Center: player, MinRadius: band.Min, MaxRadius: band.Max}); ok {
			pos, found = p, true
			break
		}
	}
	if !found {
		pos = utils.V3(player.X+w.Tuning.Placement.BeaconFallbackOffset, 0, player.Z)
		w.Metrics.SpawnFailure("beacon")
		ps.logger.Warn().Msg("no ground for beacon, using fallback offset")
	}

	if !w.EntityManager.Exists(w.Beacon) {
		id, err := entities.NewBeaconEntity(w.EntityManager, pos)
		if err != nil {
			ps.logger.Error().Err(err).Msg("failed to create beacon")
			return pos, found
		}
		w.Beacon = id
	} else if tr, ok := ecs.GetComponent[*components.TransformComponent](w.EntityManager, w.Beacon); ok {
		tr.Position = pos
	}
	ps.logger.Debug().Float64("x", pos.X).Float64("z", pos.Z).Bool("found", found).Msg("beacon placed")
	return pos, found
}

// RelocateBeacon 移动信标, 按会话配额生成警察,
// 并让所有警察前往新信标附近
func (ps *PlacementSystem) RelocateBeacon() {
	ps.PlaceBeacon()
	ps.SyncEnemyQuota(ps.world.Session.EnemyQuota())
	ps.RefreshPatrolTargets()
}

// PlaceEnemy 在信标周围的区间内生成一名警察。搜索失败时
// 记录日志且不生成, 由下一次配额同步重试
func (ps *PlacementSystem) PlaceEnemy() (ecs.EntityID, bool) {
	w := ps.world
	band := w.Tuning.Placement.EnemyBand
	pos, ok := ps.find(surface.Query{Center: w.BeaconPosition(), MinRadius: band.Min, MaxRadius: band.Max})
	if !ok {
		w.Metrics.SpawnFailure("officer")
		ps.logger.Warn().Msg("no ground for officer, spawn skipped")
		return 0, false
	}
	index := len(w.Officers())
	id, err := entities.NewOfficerEntity(w.EntityManager, pos, index)
	if err != nil {
		ps.logger.Error().Err(err).Msg("failed to create officer")
		return 0, false
	}
	ps.logger.Info().Int("officer", index).Float64("x", pos.X).Float64("z", pos.Z).Msg("officer spawned")
	return id, true
}

// SyncEnemyQuota 生成警察直到数量达到 quota。
// 已有警察不会被移除。返回生成的数量
func (ps *PlacementSystem) SyncEnemyQuota(quota int) int {
	spawned := 0
	for count := len(ps.world.Officers()); count < quota; count++ {
		if _, ok := ps.PlaceEnemy(); !ok {
			break
		}
		spawned++
	}
	return spawned
}

// RefreshPatrolTargets 为每个警察设置信标附近的巡逻目标,
// 搜索失败时以信标本身为目标
func (ps *PlacementSystem) RefreshPatrolTargets() {
	w := ps.world
	beacon := w.BeaconPosition()
	band := w.Tuning.Placement.PatrolRefreshBand
	for _, id := range w.Officers() {
		pursuit, ok := ecs.GetComponent[*components.PursuitComponent](w.EntityManager, id)
		if !ok {
			continue
		}
		target, found := ps.find(surface.Query{Center: beacon, MinRadius: band.Min, MaxRadius: band.Max})
		if !found {
			target = beacon
		}
		pursuit.SetTarget(target)
	}
}

// RollPowerupKind 按权重表抽取道具类型
func (ps *PlacementSystem) RollPowerupKind() types.PowerupKind {
	weights := ps.world.Tuning.Powerups.Weights
	total := 0.0
	for _, kw := range weights {
		total += kw.Weight
	}
	roll := ps.world.Rand.Float64() * total
	for _, kw := range weights {
		if roll < kw.Weight {
			if kind, err := types.ParsePowerupKind(kw.Kind); err == nil {
				return kind
			}
		}
		roll -= kw.Weight
	}
	return types.PowerupBike
}

// PlacePowerup 在地图任意位置生成指定类型的道具
func (ps *PlacementSystem) PlacePowerup(kind types.PowerupKind) (ecs.EntityID, bool) {
	w := ps.world
	radius := w.Classifier.Config().MapLimit * w.Tuning.Placement.PowerupRadiusFactor
	return ps.spawnPowerupIn(kind, surface.Query{MinRadius: 0, MaxRadius: radius})
}

// DebugSpawnPowerup 在玩家旁边放下指定类型的道具
func (ps *PlacementSystem) DebugSpawnPowerup(kind types.PowerupKind) (ecs.EntityID, bool) {
	band := ps.world.Tuning.Placement.DebugPowerupBand
	return ps.spawnPowerupIn(kind, surface.Query{Center: ps.world.PlayerPosition(), MinRadius: band.Min, MaxRadius: band.Max})
}

func (ps *PlacementSystem) spawnPowerupIn(kind types.PowerupKind, q surface.Query) (ecs.EntityID, bool) {
	w := ps.world
	pos, ok := ps.find(q)
	if !ok {
		w.Metrics.SpawnFailure("powerup")
		ps.logger.Warn().Stringer("kind", kind).Msg("no ground for powerup, spawn skipped")
		return 0, false
	}
	variant := 0
	if kind == types.PowerupArmorHeavy && w.Rand.Float64() > 0.5 {
		variant = 1
	}
	id, err := entities.NewPowerupEntity(w.EntityManager, pos, kind, variant)
	if err != nil {
		ps.logger.Error().Err(err).Msg("failed to create powerup")
		return 0, false
	}
	return id, true
}

// SpawnRandomPowerup 随机抽取类型并放置
func (ps *PlacementSystem) SpawnRandomPowerup() bool {
	_, ok := ps.PlacePowerup(ps.RollPowerupKind())
	return ok
}

// SpawnPowerupBurst 尝试生成 n 个随机道具, 返回成功数量
func (ps *PlacementSystem) SpawnPowerupBurst(n int) int {
	placed := 0
	for i := 0; i < n; i++ {
		if ps.SpawnRandomPowerup() {
			placed++
		}
	}
	ps.logger.Info().Int("requested", n).Int("placed", placed).Msg("powerup burst")
	return placed
}

// RespawnFallen 将跌落到下限以下的玩家和警察
// 送回世界原点附近的地面
func (ps *PlacementSystem) RespawnFallen() int {
	w := ps.world
	floor := w.Tuning.Placement.FallFloor
	respawned := 0

	if pos, ok := w.Position(w.Player); ok && pos.Y < floor {
		ps.movePlayer(ps.respawnPoint())
		ps.logger.Info().Float64("y", pos.Y).Msg("player fell out of the world, respawning")
		respawned++
	}
	for _, id := range w.Officers() {
		tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
		if tr.Position.Y >= floor {
			continue
		}
		tr.Position = ps.respawnPoint()
		if pursuit, ok := ecs.GetComponent[*components.PursuitComponent](w.EntityManager, id); ok {
			pursuit.ClearTarget()
		}
		respawned++
	}
	return respawned
}

func (ps *PlacementSystem) respawnPoint() utils.Vec3 {
	p := ps.world.Tuning.Placement
	if pos, ok := ps.find(surface.Query{MinRadius: 0, MaxRadius: p.RespawnRadius}); ok {
		pos.Y += p.RespawnLift
		return pos
	}
	return p.PlayerFallback
}

// headingToward 从 a 朝向 b 的偏航角, 同一柱时返回 current
func headingToward(a, b utils.Vec3, current float64) float64 {
	if math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Z-b.Z) < 1e-9 {
		return current
	}
	return utils.HeadingTo(a, b)
}
