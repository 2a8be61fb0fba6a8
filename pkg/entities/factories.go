// Package entities 用组件构建快递关卡中的实体
package entities

import (
	"fmt"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

// NewPlayerEntity 在 pos 处创建快递员, 初始处于空中, 由重力落地
func NewPlayerEntity(em *ecs.EntityManager, pos utils.Vec3) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.TransformComponent{Position: pos})
	ecs.AddComponent(em, id, &components.PlayerComponent{})
	ecs.AddComponent(em, id, &components.AnimationCommandComponent{})
	return id, nil
}

// NewBeaconEntity 创建送达信标
func NewBeaconEntity(em *ecs.EntityManager, pos utils.Vec3) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.TransformComponent{Position: pos})
	ecs.AddComponent(em, id, &components.BeaconComponent{})
	return id, nil
}

// NewOfficerEntity 创建处于 PATROL 状态且没有目标的警察
func NewOfficerEntity(em *ecs.EntityManager, pos utils.Vec3, index int) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.TransformComponent{Position: pos})
	ecs.AddComponent(em, id, &components.EnemyComponent{Index: index})
	ecs.AddComponent(em, id, &components.PursuitComponent{State: components.StatePatrol})
	anim := &components.AnimationCommandComponent{}
	anim.Request(types.AnimIdle, true, 0)
	ecs.AddComponent(em, id, anim)
	return id, nil
}

// NewPowerupEntity 创建可拾取的道具
func NewPowerupEntity(em *ecs.EntityManager, pos utils.Vec3, kind types.PowerupKind, variant int) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.TransformComponent{Position: pos})
	ecs.AddComponent(em, id, &components.PowerupComponent{Kind: kind, Active: true, Variant: variant})
	return id, nil
}

// NewCameraEntity 创建雾效完全打开的相机
func NewCameraEntity(em *ecs.EntityManager, pos utils.Vec3, fogNear, fogFar float64) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.CameraComponent{
		Position: pos,
		LookAt:   pos,
		FogNear:  fogNear,
		FogFar:   fogFar,
	})
	return id, nil
}
