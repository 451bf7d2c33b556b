package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// MetricHTTPRequests is the actuator metric holding per-endpoint counters.
const MetricHTTPRequests = "http.server.requests"

// AdminListUsers returns every account.
func (c *Client) AdminListUsers(ctx context.Context) ([]domain.UserDetail, error) {
	var out []domain.UserDetail
	if err := c.get(ctx, "admin_list_users", "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminGetUser returns one account.
func (c *Client) AdminGetUser(ctx context.Context, userID domain.EntityID) (domain.UserDetail, error) {
	var out domain.UserDetail
	if err := c.get(ctx, "admin_get_user", "/admin/users/"+seg(userID), nil, &out); err != nil {
		return domain.UserDetail{}, err
	}
	return out, nil
}

// AdminCreateUser creates an account.
func (c *Client) AdminCreateUser(ctx context.Context, in domain.UserInput) (domain.UserDetail, error) {
	var out domain.UserDetail
	if err := c.send(ctx, "admin_create_user", http.MethodPost, "/admin/users", in, &out); err != nil {
		return domain.UserDetail{}, err
	}
	return out, nil
}

// AdminUpdateUser updates an account.
func (c *Client) AdminUpdateUser(ctx context.Context, userID domain.EntityID, in domain.UserInput) (domain.UserDetail, error) {
	var out domain.UserDetail
	if err := c.send(ctx, "admin_update_user", http.MethodPut, "/admin/users/"+seg(userID), in, &out); err != nil {
		return domain.UserDetail{}, err
	}
	return out, nil
}

// AdminDeleteUser deletes an account.
func (c *Client) AdminDeleteUser(ctx context.Context, userID domain.EntityID) error {
	return c.send(ctx, "admin_delete_user", http.MethodDelete, "/admin/users/"+seg(userID), nil, nil)
}

// AdminStats returns the aggregate KPIs.
func (c *Client) AdminStats(ctx context.Context) (domain.AdminKPIs, error) {
	var out domain.AdminKPIs
	if err := c.get(ctx, "admin_stats", "/admin/stats", nil, &out); err != nil {
		return domain.AdminKPIs{}, err
	}
	return out, nil
}

// Health returns the actuator health document.
func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var out domain.Health
	err := c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health", actuator: true, out: &out})
	if err != nil {
		return domain.Health{}, err
	}
	return out, nil
}

// Metric returns the named actuator metric.
func (c *Client) Metric(ctx context.Context, name string) (domain.Metric, error) {
	return c.metric(ctx, name, nil)
}

// RequestMetrics returns the HTTP request counters, filtered to uri when set.
func (c *Client) RequestMetrics(ctx context.Context, uri string) (domain.Metric, error) {
	var query url.Values
	if uri != "" {
		query = url.Values{"tag": {"uri:" + uri}}
	}
	return c.metric(ctx, MetricHTTPRequests, query)
}

func (c *Client) metric(ctx context.Context, name string, query url.Values) (domain.Metric, error) {
	var out domain.Metric
	err := c.do(ctx, call{
		op:       "metric",
		method:   http.MethodGet,
		path:     "/metrics/" + url.PathEscape(name),
		actuator: true,
		query:    query,
		out:      &out,
	})
	if err != nil {
		return domain.Metric{}, err
	}
	return out, nil
}
