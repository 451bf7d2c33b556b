package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/session"
)

// ProvideSession provides the signed-in session. The remote client is
// pointed at it for bearer tokens and 401 handling, and any persisted token
// is restored. A token from the configuration is used when none was
// persisted.
func ProvideSession(i do.Injector) (*session.Session, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*RemoteClientHandle](i)
	mirrorHandle := do.MustInvoke[*MirrorHandle](i)
	notifyHandle := do.MustInvoke[*NotifyManagerHandle](i)

	sess := session.New(session.Options{
		API:     client.Client,
		Tokens:  mirrorHandle.DB,
		Emitter: notifyHandle.Manager,
		Logger:  log.WithComponent("session").Logger,
	})
	client.SetAuth(sess, sess.HandleUnauthorized)

	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	if err := sess.Restore(ctx); err != nil {
		log.Warn("Could not restore session", "error", err)
	}
	if sess.Token() == "" && cfg.Session.Token != "" {
		if err := sess.SetToken(ctx, cfg.Session.Token); err != nil {
			log.Warn("Configured token rejected", "error", err)
		}
	}

	log.Debug("Session ready", "authenticated", sess.IsAuthenticated())
	return sess, nil
}
