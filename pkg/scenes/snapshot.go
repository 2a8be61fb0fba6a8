package scenes

import (
	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

// 在关卡模板清单中查找的模板名称
const (
	TemplatePlayer     = "player"
	TemplatePlayerBike = "player_bike"
	TemplatePolice     = "police"
	TemplateBeacon     = "beacon"
)

// EntityView 渲染器绘制一个实体所需的数据
type EntityView struct {
	ID       ecs.EntityID
	Position utils.Vec3
	Heading  float64
	Template string
	Anim     types.AnimState
	// State 警察 AI 状态, 其他实体为空
	State string
}

// Snapshot 一帧内所有可见内容的只读副本
type Snapshot struct {
	LevelID   string
	Loading   bool
	LoadError string

	Player   EntityView
	Beacon   EntityView
	Officers []EntityView
	Powerups []EntityView
	Camera   components.CameraComponent

	Score       int
	Armor       int
	TimeLeft    float64
	DrinkTimer  float64
	WantedLevel int
	Status      string
	Title       string
	Active      bool
	Busted      bool
	Paused      bool
	MapOpen     bool
}

// PowerupTemplate 道具类型和变体对应的模型名
func PowerupTemplate(kind types.PowerupKind, variant int) string {
	switch kind {
	case types.PowerupBike:
		return "bike"
	case types.PowerupDrink:
		return "drink"
	case types.PowerupArmorLight:
		return "armor_belt"
	case types.PowerupArmorHeavy:
		if variant == 1 {
			return "armor_tee_grey"
		}
		return "armor_tee"
	}
	return kind.String()
}

// Snapshot 为渲染协作方复制当前帧
func (s *GameScene) Snapshot() Snapshot {
	w := s.world
	em := w.EntityManager
	snap := Snapshot{
		LevelID:     w.LevelID,
		Loading:     s.loading,
		Score:       w.Session.Score,
		Armor:       w.Session.Armor,
		TimeLeft:    w.Session.TimeLeft,
		DrinkTimer:  w.Session.DrinkTimer,
		WantedLevel: w.Session.WantedLevel(),
		Status:      w.Session.Status(),
		Title:       w.Session.Title(),
		Active:      w.Session.GameActive,
		Busted:      w.Session.IsBusted,
		Paused:      w.Session.Paused,
		MapOpen:     w.Session.MapOpen,
	}
	if s.loadErr != nil {
		snap.LoadError = s.loadErr.Error()
	}

	if em.Exists(w.Player) {
		snap.Player = view(em, w.Player, TemplatePlayer)
		if pc, ok := ecs.GetComponent[*components.PlayerComponent](em, w.Player); ok && pc.Mounted {
			snap.Player.Template = TemplatePlayerBike
		}
	}
	if em.Exists(w.Beacon) {
		snap.Beacon = view(em, w.Beacon, TemplateBeacon)
	}
	for _, id := range w.Officers() {
		v := view(em, id, TemplatePolice)
		if p, ok := ecs.GetComponent[*components.PursuitComponent](em, id); ok {
			v.State = p.State.String()
		}
		snap.Officers = append(snap.Officers, v)
	}
	for _, id := range ecs.GetEntitiesWith2[*components.PowerupComponent, *components.TransformComponent](em) {
		p, _ := ecs.GetComponent[*components.PowerupComponent](em, id)
		if !p.Active {
			continue
		}
		snap.Powerups = append(snap.Powerups, view(em, id, PowerupTemplate(p.Kind, p.Variant)))
	}
	if cam, ok := ecs.GetComponent[*components.CameraComponent](em, w.Camera); ok {
		snap.Camera = *cam
	}
	return snap
}

func view(em *ecs.EntityManager, id ecs.EntityID, template string) EntityView {
	v := EntityView{ID: id, Template: template}
	if tr, ok := ecs.GetComponent[*components.TransformComponent](em, id); ok {
		v.Position = tr.Position
		v.Heading = tr.Heading
	}
	if anim, ok := ecs.GetComponent[*components.AnimationCommandComponent](em, id); ok {
		v.Anim = anim.State
	}
	return v
}
