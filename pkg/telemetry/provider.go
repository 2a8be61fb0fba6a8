// Package telemetry 管理 OpenTelemetry 的 MeterProvider。启用时
// 玩法计数器周期性导出到 writer(会话指标文件);
// 否则所有 meter 都是 no-op
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config 遥测配置
type Config struct {
	Enabled     bool
	ServiceName string
	Interval    time.Duration // 周期读取器的导出间隔
	Writer      io.Writer     // 导出指标的目标
	// Reader 设置后替换周期性 stdout 读取器。
	// 测试传入 ManualReader 按需采集
	Reader sdkmetric.Reader
}

// Provider 封装 SDK 的 MeterProvider
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	config        Config
}

// New 创建 provider, 禁用时返回 no-op provider
func New(cfg Config) (*Provider, error) {
	p := &Provider{config: cfg}
	if !cfg.Enabled {
		return p, nil
	}

	reader := cfg.Reader
	if reader == nil {
		if cfg.Writer == nil {
			return nil, errors.New("metrics enabled but no writer configured")
		}
		if cfg.Interval <= 0 {
			return nil, fmt.Errorf("metrics interval must be positive, got %s", cfg.Interval)
		}
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	return p, nil
}

// Enabled 是否记录指标
func (p *Provider) Enabled() bool {
	return p.meterProvider != nil
}

// Meter 返回指定名称的 meter, 禁用时为 no-op
func (p *Provider) Meter(name string) metric.Meter {
	if p.meterProvider == nil {
		return noop.Meter{}
	}
	return p.meterProvider.Meter(name)
}

// Flush 导出目前为止记录的全部数据
func (p *Provider) Flush(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	if err := p.meterProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("metric flush failed: %w", err)
	}
	return nil
}

// Shutdown 刷新并停止 provider, 退出时调用一次
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("metric shutdown failed: %w", err)
	}
	return nil
}
