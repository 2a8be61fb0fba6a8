// Package ecs 提供场景的实体-组件存储: 实体只是 ID,
// 所有状态都保存在挂载到实体上的类型化组件里。
package ecs

import (
	"reflect"
	"sort"
)

// EntityID 是实体的唯一标识符,0 永远不会被分配
type EntityID uint64

// EntityManager 管理所有实体和组件
type EntityManager struct {
	nextID uint64
	// 实体-组件映射: EntityID -> 组件类型 -> 组件实例
	components map[EntityID]map[reflect.Type]any
	// 待删除的实体, 在下一次 RemoveMarkedEntities 时清理
	entitiesToDestroy []EntityID
}

// NewEntityManager 创建一个空的 EntityManager
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:            1,
		components:        make(map[EntityID]map[reflect.Type]any),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	id := EntityID(em.nextID)
	em.nextID++
	em.components[id] = make(map[reflect.Type]any)
	return id
}

// DestroyEntity 标记实体待删除(不立即删除)。
// RemoveMarkedEntities 执行前组件仍然保留, 同一帧后续的系统依然可见
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// IsMarked 检查实体是否已标记删除
func (em *EntityManager) IsMarked(id EntityID) bool {
	for _, marked := range em.entitiesToDestroy {
		if marked == id {
			return true
		}
	}
	return false
}

// Exists 检查实体是否存活(包括已标记但未清理的)
func (em *EntityManager) Exists(id EntityID) bool {
	_, ok := em.components[id]
	return ok
}

// RemoveMarkedEntities 清理所有标记删除的实体
func (em *EntityManager) RemoveMarkedEntities() {
	for _, id := range em.entitiesToDestroy {
		delete(em.components, id)
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0]
}

// Clear 立即删除所有实体, ID 在多次清空之间继续递增
func (em *EntityManager) Clear() {
	em.components = make(map[EntityID]map[reflect.Type]any)
	em.entitiesToDestroy = em.entitiesToDestroy[:0]
}

// Count 返回存活实体数量
func (em *EntityManager) Count() int {
	return len(em.components)
}

func (em *EntityManager) entitiesWith(types ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)
	for id, compMap := range em.components {
		hasAll := true
		for _, ct := range types {
			if _, found := compMap[ct]; !found {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, id)
		}
	}
	// map 遍历顺序随机; 调用方依赖创建顺序保证更新确定性
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// AddComponent 为实体添加组件, 同类型组件会被替换。
// 实体不存在时不做任何操作
func AddComponent[T any](em *EntityManager, id EntityID, comp T) {
	if compMap, exists := em.components[id]; exists {
		compMap[reflect.TypeFor[T]()] = comp
	}
}

// GetComponent 获取实体的特定类型组件
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	var zero T
	compMap, exists := em.components[id]
	if !exists {
		return zero, false
	}
	comp, found := compMap[reflect.TypeFor[T]()]
	if !found {
		return zero, false
	}
	return comp.(T), true
}

// HasComponent 检查实体是否拥有特定类型组件
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	_, ok := GetComponent[T](em, id)
	return ok
}

// RemoveComponent 从实体移除指定类型的组件
func RemoveComponent[T any](em *EntityManager, id EntityID) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, reflect.TypeFor[T]())
	}
}

// GetEntitiesWith1 按创建顺序返回拥有 T1 的所有实体
func GetEntitiesWith1[T1 any](em *EntityManager) []EntityID {
	return em.entitiesWith(reflect.TypeFor[T1]())
}

// GetEntitiesWith2 按创建顺序返回同时拥有 T1 和 T2 的所有实体
func GetEntitiesWith2[T1, T2 any](em *EntityManager) []EntityID {
	return em.entitiesWith(reflect.TypeFor[T1](), reflect.TypeFor[T2]())
}
