package domain

// AdminKPIs are the aggregate counters served by /admin/stats.
// TaskCompletionRate is a ratio in [0,1].
type AdminKPIs struct {
	TotalUsers         int     `json:"totalUsers"`
	TotalEvents        int     `json:"totalEvents"`
	TaskCompletionRate float64 `json:"taskCompletionRate"`
	ActiveOrganizers   int     `json:"activeOrganizers"`
}

// ComponentHealth is the status of one health indicator.
type ComponentHealth struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// Health is the actuator health document.
type Health struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Measurement is one statistic of a metric.
type Measurement struct {
	Statistic string  `json:"statistic"`
	Value     float64 `json:"value"`
}

// MetricTag lists the values a metric can be filtered by.
type MetricTag struct {
	Tag    string   `json:"tag"`
	Values []string `json:"values"`
}

// Metric is an actuator metric document.
type Metric struct {
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	BaseUnit      string        `json:"baseUnit,omitempty"`
	Measurements  []Measurement `json:"measurements"`
	AvailableTags []MetricTag   `json:"availableTags,omitempty"`
}

// Statistic returns the value of the named statistic, or 0.
func (m Metric) Statistic(name string) float64 {
	for _, s := range m.Measurements {
		if s.Statistic == name {
			return s.Value
		}
	}
	return 0
}

// First returns the first measurement's value, or 0.
func (m Metric) First() float64 {
	if len(m.Measurements) == 0 {
		return 0
	}
	return m.Measurements[0].Value
}

// TagValues returns the values of the named tag and whether it is present.
func (m Metric) TagValues(tag string) ([]string, bool) {
	for _, t := range m.AvailableTags {
		if t.Tag == tag {
			return t.Values, true
		}
	}
	return nil, false
}

// Token is the login response.
type Token struct {
	Token string `json:"token"`
}
