// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks is the full WAFFLE lifecycle for issuedeck; cmd/issuedeck passes it
// to app.Run.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "issuedeck",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
