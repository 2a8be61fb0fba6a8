package components

// BeaconComponent 标记唯一的送达目标。
// 每次送达后信标会被移动, 永不销毁
type BeaconComponent struct {
	// Deliveries 记录该信标被送达的次数
	Deliveries int
}

// EnemyComponent 标记警察实体
type EnemyComponent struct {
	// Index 是生成顺序, 用于稳定的日志输出
	Index int
}
