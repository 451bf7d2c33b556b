package di

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/di/providers"
	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/session"
	"github.com/eventdeck/eventdeck-client/internal/store"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		API: config.APIConfig{
			BaseURL:           baseURL + "/api",
			ActuatorURL:       baseURL + "/actuator",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
		Mirror: config.MirrorConfig{InMemory: true},
		MockAPI: config.MockAPIConfig{
			Port:        "0",
			TokenSecret: "container-test",
			TokenTTL:    time.Hour,
		},
	}
}

func TestContainer_BootstrapAgainstMockAPI(t *testing.T) {
	backendScope := NewContainer(testConfig("http://unused"))
	t.Cleanup(func() { _ = backendScope.Shutdown() })
	backend := do.MustInvoke[*providers.MockAPIHandle](backendScope)
	ts := httptest.NewServer(backend.Backend)
	t.Cleanup(ts.Close)

	injector := NewContainer(testConfig(ts.URL))
	t.Cleanup(func() { _ = injector.Shutdown() })

	require.NoError(t, Bootstrap(injector))

	sess := do.MustInvoke[*session.Session](injector)
	assert.False(t, sess.IsAuthenticated())

	st := do.MustInvoke[*store.Store](injector)
	assert.Len(t, st.FallbackEvents(), 4, "mirror seeded from the bundled dataset")

	ctx := context.Background()
	_, err := sess.Login(ctx, domain.Credentials{Username: "bob", Password: "bob-pass"})
	require.NoError(t, err)

	events := st.FetchEvents(ctx)
	assert.Len(t, events, 2)

	projector := do.MustInvoke[*providers.ProjectorHandle](injector)
	snap := projector.Refresh()
	assert.Equal(t, 2, snap.Stats.TotalEvents)
}
