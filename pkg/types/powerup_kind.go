// Package types 定义配置、组件和系统共用的枚举类型
package types

import "fmt"

// PowerupKind 道具类型
type PowerupKind int

const (
	PowerupBike       PowerupKind = iota // 坐骑, 速度 x1.8
	PowerupDrink                         // 限时加速
	PowerupArmorLight                    // 腰带, 护甲 +1
	PowerupArmorHeavy                    // T恤, 护甲 +2
)

var powerupKindNames = map[PowerupKind]string{
	PowerupBike:       "bike",
	PowerupDrink:      "drink",
	PowerupArmorLight: "armor_light",
	PowerupArmorHeavy: "armor_heavy",
}

func (k PowerupKind) String() string {
	if name, ok := powerupKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PowerupKind(%d)", int(k))
}

// ParsePowerupKind 将配置/命令行名称映射为道具类型。
// 也接受资源名 "armor_belt" 和 "armor_tee" 作为别名
func ParsePowerupKind(s string) (PowerupKind, error) {
	switch s {
	case "bike":
		return PowerupBike, nil
	case "drink":
		return PowerupDrink, nil
	case "armor_light", "armor_belt":
		return PowerupArmorLight, nil
	case "armor_heavy", "armor_tee":
		return PowerupArmorHeavy, nil
	}
	return 0, fmt.Errorf("unknown powerup kind %q", s)
}

// AllPowerupKinds 按声明顺序列出所有道具类型
func AllPowerupKinds() []PowerupKind {
	return []PowerupKind{PowerupBike, PowerupDrink, PowerupArmorLight, PowerupArmorHeavy}
}
