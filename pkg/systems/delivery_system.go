package systems

import (
	"github.com/rs/zerolog"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/logging"
)

// DeliverySystem 玩家到达信标时计分并移动信标
type DeliverySystem struct {
	world     *World
	placement *PlacementSystem
	logger    zerolog.Logger
}

// NewDeliverySystem 创建送达检测
func NewDeliverySystem(w *World, placement *PlacementSystem) *DeliverySystem {
	return &DeliverySystem{
		world:     w,
		placement: placement,
		logger:    logging.For("DeliverySystem"),
	}
}

// Update 本帧发生送达时返回 true。送达会增加分数、
// 延长时间、移动信标并补足警察
func (s *DeliverySystem) Update() bool {
	w := s.world
	if !w.Session.GameActive {
		return false
	}
	beacon, ok := ecs.GetComponent[*components.BeaconComponent](w.EntityManager, w.Beacon)
	if !ok {
		return false
	}
	if w.PlayerPosition().Dist(w.BeaconPosition()) >= w.Session.Tuning().DeliveryRadius {
		return false
	}
	if !w.Session.Deliver() {
		return false
	}
	beacon.Deliveries++
	w.Metrics.Delivery(w.LevelID)
	s.logger.Info().
		Int("score", w.Session.Score).
		Float64("timeLeft", w.Session.TimeLeft).
		Int("wantedLevel", w.Session.WantedLevel()).
		Msg("delivered")
	s.placement.RelocateBeacon()
	return true
}
