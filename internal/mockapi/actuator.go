package mockapi

import (
	"context"
	"net/http"
	"runtime"
	"runtime/metrics"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

const (
	cpuTotalSample = "/cpu/classes/total:cpu-seconds"
	cpuIdleSample  = "/cpu/classes/idle:cpu-seconds"
)

func (s *Server) registerActuatorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "actuator-health",
		Method:      http.MethodGet,
		Path:        "/actuator/health",
		Summary:     "Health check",
		Tags:        []string{"Actuator"},
	}, s.handleHealth)

	huma.Register(s.api, huma.Operation{
		OperationID: "actuator-metric",
		Method:      http.MethodGet,
		Path:        "/actuator/metrics/{name}",
		Summary:     "Read a metric",
		Description: "Supports tag=uri:<pattern> on http.server.requests",
		Tags:        []string{"Actuator"},
	}, s.handleMetric)
}

// HealthOutput wraps the health document.
type HealthOutput struct {
	Body domain.Health
}

// MetricInput selects a metric.
type MetricInput struct {
	Name string `path:"name" doc:"Metric name"`
	Tag  string `query:"tag" doc:"Filter as tag:value"`
}

// MetricOutput wraps a metric document.
type MetricOutput struct {
	Body domain.Metric
}

func (s *Server) handleHealth(context.Context, *struct{}) (*HealthOutput, error) {
	s.data.mu.RLock()
	events := len(s.data.events)
	s.data.mu.RUnlock()

	return &HealthOutput{Body: domain.Health{
		Status: "UP",
		Components: map[string]domain.ComponentHealth{
			"db":        {Status: "UP", Details: map[string]any{"database": "in-memory", "events": events}},
			"diskSpace": {Status: "UP"},
			"ping":      {Status: "UP"},
		},
	}}, nil
}

func (s *Server) handleMetric(_ context.Context, input *MetricInput) (*MetricOutput, error) {
	value := func(v float64) []domain.Measurement {
		return []domain.Measurement{{Statistic: "VALUE", Value: v}}
	}

	m := domain.Metric{Name: input.Name}
	switch input.Name {
	case "process.uptime":
		m.BaseUnit = "seconds"
		m.Measurements = value(s.data.now().Sub(s.started).Seconds())
	case "process.cpu.usage", "system.cpu.usage":
		m.Measurements = value(cpuUsage())
	case "jvm.memory.used":
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		m.BaseUnit = "bytes"
		m.Measurements = value(float64(ms.HeapAlloc))
	case "jvm.memory.max":
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		m.BaseUnit = "bytes"
		m.Measurements = value(float64(ms.Sys))
	case "http.server.requests":
		uri := ""
		if input.Tag != "" {
			name, v, ok := strings.Cut(input.Tag, ":")
			if !ok || name != "uri" {
				return nil, domainerrors.Validationf("unsupported tag %q", input.Tag)
			}
			uri = v
		}
		count, total := s.requests.totals(uri)
		m.BaseUnit = "seconds"
		m.Measurements = []domain.Measurement{
			{Statistic: "COUNT", Value: count},
			{Statistic: "TOTAL_TIME", Value: total},
		}
		if uri == "" {
			m.AvailableTags = []domain.MetricTag{{Tag: "uri", Values: s.requests.uris()}}
		}
	default:
		return nil, domainerrors.NotFoundf("metric %s not found", input.Name)
	}
	return &MetricOutput{Body: m}, nil
}

// cpuUsage is the busy share of available CPU time since process start.
func cpuUsage() float64 {
	samples := []metrics.Sample{{Name: cpuTotalSample}, {Name: cpuIdleSample}}
	metrics.Read(samples)
	if samples[0].Value.Kind() != metrics.KindFloat64 || samples[1].Value.Kind() != metrics.KindFloat64 {
		return 0
	}
	total, idle := samples[0].Value.Float64(), samples[1].Value.Float64()
	if total <= 0 {
		return 0
	}
	return (total - idle) / total
}
