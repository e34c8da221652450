// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	authgooglefeature "github.com/issuedeck/issuedeck/internal/app/features/authgoogle"
	commentsfeature "github.com/issuedeck/issuedeck/internal/app/features/comments"
	healthfeature "github.com/issuedeck/issuedeck/internal/app/features/health"
	issuesfeature "github.com/issuedeck/issuedeck/internal/app/features/issues"
	labelsfeature "github.com/issuedeck/issuedeck/internal/app/features/labels"
	loginfeature "github.com/issuedeck/issuedeck/internal/app/features/login"
	notificationsfeature "github.com/issuedeck/issuedeck/internal/app/features/notifications"
	profilefeature "github.com/issuedeck/issuedeck/internal/app/features/profile"
	projectsfeature "github.com/issuedeck/issuedeck/internal/app/features/projects"
	searchfeature "github.com/issuedeck/issuedeck/internal/app/features/search"
	teamsfeature "github.com/issuedeck/issuedeck/internal/app/features/teams"
	searchcore "github.com/issuedeck/issuedeck/internal/app/search"
	commentstore "github.com/issuedeck/issuedeck/internal/app/store/comments"
	favoritestore "github.com/issuedeck/issuedeck/internal/app/store/favorites"
	issuestore "github.com/issuedeck/issuedeck/internal/app/store/issues"
	labelstore "github.com/issuedeck/issuedeck/internal/app/store/labels"
	loginstore "github.com/issuedeck/issuedeck/internal/app/store/logins"
	membershipstore "github.com/issuedeck/issuedeck/internal/app/store/memberships"
	notificationstore "github.com/issuedeck/issuedeck/internal/app/store/notifications"
	"github.com/issuedeck/issuedeck/internal/app/store/oauthstate"
	projectstore "github.com/issuedeck/issuedeck/internal/app/store/projects"
	searchstore "github.com/issuedeck/issuedeck/internal/app/store/search"
	teamstore "github.com/issuedeck/issuedeck/internal/app/store/teams"
	userstore "github.com/issuedeck/issuedeck/internal/app/store/users"
	"github.com/issuedeck/issuedeck/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. issuedeck is a JSON API: every feature
// router returns JSON, and authentication failures are 401 envelopes
// rather than redirects.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	users := userstore.New(db)
	teams := teamstore.New(db)
	memberships := membershipstore.New(db)
	projects := projectstore.New(db)
	issues := issuestore.New(db)
	comments := commentstore.New(db)
	labels := labelstore.New(db)
	favorites := favoritestore.New(db)
	notifications := notificationstore.New(db)
	logins := loginstore.New(db)
	oauthStates := oauthstate.New(db)

	aggregator := searchcore.New(searchstore.New(db), logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication (public)
	loginHandler := loginfeature.NewHandler(users, logins, sessionMgr, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))

	googleHandler := authgooglefeature.NewHandler(
		users, logins, oauthStates, sessionMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
		logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Everything below requires a signed-in user.
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		searchHandler := searchfeature.NewHandler(aggregator, logger)
		r.Mount("/search", searchfeature.Routes(searchHandler))

		teamsHandler := teamsfeature.NewHandler(teams, memberships, users, logger)
		r.Mount("/teams", teamsfeature.Routes(teamsHandler))

		projectsHandler := projectsfeature.NewHandler(projects, memberships, favorites, logger)
		r.Mount("/projects", projectsfeature.Routes(projectsHandler))

		issuesHandler := issuesfeature.NewHandler(issues, projects, memberships, labels, notifications, logger)
		r.Mount("/issues", issuesfeature.Routes(issuesHandler))

		commentsHandler := commentsfeature.NewHandler(comments, issues, projects, memberships, notifications, logger)
		r.Mount("/comments", commentsfeature.Routes(commentsHandler))

		labelsHandler := labelsfeature.NewHandler(labels, memberships, logger)
		r.Mount("/labels", labelsfeature.Routes(labelsHandler))

		notificationsHandler := notificationsfeature.NewHandler(notifications, logger)
		r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

		profileHandler := profilefeature.NewHandler(users, logins, logger)
		r.Mount("/me", profilefeature.Routes(profileHandler))
	})

	logger.Info("routes mounted", zap.Bool("google_oauth", googleHandler.IsConfigured()))

	return r, nil
}
