package systems

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/decker502/courier/pkg/logging"
)

// MeterName 玩法计数器的仪表作用域
const MeterName = "github.com/decker502/courier/systems"

// Metrics 统计玩法事件。未安装 provider 时全局 otel meter
// 是 no-op, 计数总是安全的
type Metrics struct {
	spawnFailures metric.Int64Counter
	deliveries    metric.Int64Counter
	busts         metric.Int64Counter
	timeouts      metric.Int64Counter
	pickups       metric.Int64Counter
}

// NewMetrics 在 meter 上创建计数器, meter 为 nil 时使用全局 provider。
// 注册失败的仪表回退为 no-op
func NewMetrics(meter metric.Meter) *Metrics {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(MeterName)
	}
	return &Metrics{
		spawnFailures: counter(meter, "courier.spawn.failures", "Placements that exhausted every search tier"),
		deliveries:    counter(meter, "courier.deliveries", "Completed deliveries"),
		busts:         counter(meter, "courier.busts", "Sessions ended by a catch"),
		timeouts:      counter(meter, "courier.timeouts", "Sessions ended by the clock"),
		pickups:       counter(meter, "courier.pickups", "Collected powerups"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		logger := logging.For("Metrics")
		logger.Warn().Err(err).Str("instrument", name).Msg("counter unavailable, using no-op")
		c, _ = noop.Meter{}.Int64Counter(name)
	}
	return c
}

// SpawnFailure 记录一次找不到有效点的放置
func (m *Metrics) SpawnFailure(entity string) {
	if m == nil {
		return
	}
	m.spawnFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("entity", entity)))
}

// Delivery 记录关卡上一次完成的送达
func (m *Metrics) Delivery(level string) {
	if m == nil {
		return
	}
	m.deliveries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("level", level)))
}

// Bust 记录一次被捕
func (m *Metrics) Bust(level string) {
	if m == nil {
		return
	}
	m.busts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("level", level)))
}

// Timeout 记录一次超时结束的会话
func (m *Metrics) Timeout(level string) {
	if m == nil {
		return
	}
	m.timeouts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("level", level)))
}

// Pickup 记录一次道具拾取
func (m *Metrics) Pickup(kind string) {
	if m == nil {
		return
	}
	m.pickups.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}
