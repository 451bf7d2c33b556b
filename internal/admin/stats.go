package admin

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/views"
)

// Actuator metric names read by the dashboard.
const (
	MetricUptime          = "process.uptime"
	MetricProcessCPU      = "process.cpu.usage"
	MetricSystemCPU       = "system.cpu.usage"
	MetricMemoryUsed      = "jvm.memory.used"
	MetricMemoryMax       = "jvm.memory.max"
	metricHTTPRequests    = "http.server.requests"
	maxTrackedEndpoints   = 5
	statusUp              = "UP"
	statisticCount        = "COUNT"
	statisticTotalTime    = "TOTAL_TIME"
	statisticDefaultValue = "VALUE"
)

// DefaultEndpoints are tracked when the backend does not list its URIs.
var DefaultEndpoints = []string{"/api/events", "/api/tasks", "/api/me", "/api/auth/login"}

// ProcessMetrics are the first measurement of each process metric.
type ProcessMetrics struct {
	Uptime          float64 `json:"uptime"`
	ProcessCPUUsage float64 `json:"processCpuUsage"`
	SystemCPUUsage  float64 `json:"systemCpuUsage"`
	MemoryUsed      float64 `json:"memoryUsed"`
	MemoryMax       float64 `json:"memoryMax"`
}

// Endpoint is the request counter of one URI.
type Endpoint struct {
	URI       string  `json:"uri"`
	Count     float64 `json:"count"`
	TotalTime float64 `json:"totalTime"`
}

// KPIs are the dashboard counters. TaskCompletionRate is a percentage.
type KPIs struct {
	TotalUsers         int `json:"totalUsers"`
	TotalEvents        int `json:"totalEvents"`
	TaskCompletionRate int `json:"taskCompletionRate"`
	ActiveOrganizers   int `json:"activeOrganizers"`
}

// Stats is one dashboard snapshot.
type Stats struct {
	Health       domain.Health  `json:"health"`
	Metrics      ProcessMetrics `json:"metrics"`
	TopEndpoints []Endpoint     `json:"topEndpoints"`
	KPIs         KPIs           `json:"kpis"`
}

// MemoryUsagePercent returns used memory as a rounded percentage of max.
func (s Stats) MemoryUsagePercent() int {
	return MemoryUsagePercent(s.Metrics.MemoryUsed, s.Metrics.MemoryMax)
}

// Stats returns the last snapshot built by FetchStats.
func (s *Service) Stats() (Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return Stats{}, false
	}
	return *s.stats, true
}

func defaultHealth() domain.Health {
	return domain.Health{
		Status: statusUp,
		Components: map[string]domain.ComponentHealth{
			"db":        {Status: statusUp},
			"diskSpace": {Status: statusUp},
		},
	}
}

func defaultMetric(name string) domain.Metric {
	return domain.Metric{Name: name, Measurements: []domain.Measurement{{Statistic: statisticDefaultValue}}}
}

// FetchStats builds a dashboard snapshot. Every remote call runs
// concurrently and degrades to a neutral default on failure, so the
// snapshot is always produced.
func (s *Service) FetchStats(ctx context.Context) Stats {
	s.setLoading(true)
	defer s.setLoading(false)

	var (
		health   domain.Health
		kpis     *domain.AdminKPIs
		requests domain.Metric
		names    = []string{MetricUptime, MetricProcessCPU, MetricSystemCPU, MetricMemoryUsed, MetricMemoryMax}
		metrics  = make([]domain.Metric, len(names))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.api.Health(gctx)
		if err != nil {
			s.logger.Debug("health unavailable", "error", err)
			h = defaultHealth()
		}
		health = h
		return nil
	})
	g.Go(func() error {
		k, err := s.api.AdminStats(gctx)
		if err != nil {
			s.logger.Debug("admin stats unavailable", "error", err)
			return nil
		}
		kpis = &k
		return nil
	})
	for i, name := range names {
		g.Go(func() error {
			m, err := s.api.Metric(gctx, name)
			if err != nil {
				m = defaultMetric(name)
			}
			metrics[i] = m
			return nil
		})
	}
	g.Go(func() error {
		m, err := s.api.RequestMetrics(gctx, "")
		if err != nil {
			m = domain.Metric{Name: metricHTTPRequests}
		}
		requests = m
		return nil
	})
	_ = g.Wait()

	stats := Stats{
		Health: health,
		Metrics: ProcessMetrics{
			Uptime:          metrics[0].First(),
			ProcessCPUUsage: metrics[1].First(),
			SystemCPUUsage:  metrics[2].First(),
			MemoryUsed:      metrics[3].First(),
			MemoryMax:       metrics[4].First(),
		},
		TopEndpoints: s.topEndpoints(ctx, TrackedURIs(requests)),
		KPIs:         s.kpis(kpis),
	}

	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()
	return stats
}

// TrackedURIs picks up to five URIs without path variables from the uri tag
// of the request metric, or DefaultEndpoints when the tag is absent.
func TrackedURIs(requests domain.Metric) []string {
	values, ok := requests.TagValues("uri")
	if !ok {
		return slices.Clone(DefaultEndpoints)
	}
	out := make([]string, 0, maxTrackedEndpoints)
	for _, uri := range values {
		if strings.ContainsAny(uri, "{}") {
			continue
		}
		out = append(out, uri)
		if len(out) == maxTrackedEndpoints {
			break
		}
	}
	return out
}

func (s *Service) topEndpoints(ctx context.Context, uris []string) []Endpoint {
	out := make([]Endpoint, len(uris))

	var g errgroup.Group
	for i, uri := range uris {
		g.Go(func() error {
			out[i] = Endpoint{URI: uri}
			m, err := s.api.RequestMetrics(ctx, uri)
			if err != nil {
				return nil
			}
			out[i].Count = m.Statistic(statisticCount)
			out[i].TotalTime = m.Statistic(statisticTotalTime)
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(out, func(a, b Endpoint) int { return cmp.Compare(b.Count, a.Count) })
	return out
}

// kpis prefers the server's counters and falls back to local ones.
func (s *Service) kpis(server *domain.AdminKPIs) KPIs {
	var events []domain.Event
	var tasks []domain.Task
	if s.local != nil {
		events, tasks = s.local.Events(), s.local.Tasks()
	}
	local := views.ComputeStats(events, tasks)

	s.mu.RLock()
	userCount := len(s.users)
	s.mu.RUnlock()

	var out KPIs
	switch {
	case server != nil:
		out.TaskCompletionRate = int(math.Round(server.TaskCompletionRate * 100))
		out.TotalUsers = server.TotalUsers
		out.TotalEvents = server.TotalEvents
		out.ActiveOrganizers = server.ActiveOrganizers
	case local.TotalTasks > 0:
		out.TaskCompletionRate = int(math.Round(float64(local.CompletedTasks) / float64(local.TotalTasks) * 100))
	}
	if out.TotalUsers == 0 {
		out.TotalUsers = userCount
	}
	if out.TotalEvents == 0 {
		out.TotalEvents = local.TotalEvents
	}
	return out
}
