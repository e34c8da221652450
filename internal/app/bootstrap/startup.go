// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/issuedeck/issuedeck/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// The TTL index on oauth_states handles expiry in steady state; the sweep
// here clears anything that accumulated while the service was down.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	states := oauthstate.New(deps.MongoDatabase)
	n, err := states.CleanupExpired(ctx)
	if err != nil {
		logger.Warn("oauth state cleanup failed", zap.Error(err))
		return nil
	}
	if n > 0 {
		logger.Info("cleaned up expired oauth states", zap.Int64("removed", n))
	}
	return nil
}
