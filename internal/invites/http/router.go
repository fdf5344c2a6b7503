package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/invitelinks/internal/invites/service"
	"github.com/aussiebroadwan/invitelinks/internal/invites/store"
	"github.com/aussiebroadwan/invitelinks/pkg/httpx"
	"github.com/aussiebroadwan/invitelinks/pkg/jwtx"
	"github.com/aussiebroadwan/invitelinks/pkg/linksdk"
	"github.com/aussiebroadwan/invitelinks/pkg/slogx"

	_ "github.com/aussiebroadwan/invitelinks/api/invites" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	LinkService    *service.LinkService
	WelcomeService *service.WelcomeService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLinks()
	r.registerWelcome()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BarTab Invitation Link Service API
//	@version		0.1.0
//	@description	Members create, list and revoke time-limited invitation links. Invitees resolve a link's code to see who invited them.
//	@description
//	@description				Member endpoints take access tokens issued by the BarTab auth service (EdDSA, verified against its JWKS).
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/invitelinks
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8081
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLinks() {
	h := &LinksHandler{LinkService: r.LinkService}

	// GET /v1/invitation-links - lenient limit, the list is refreshed often
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(linksdk.ScopeRead),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)

	// POST /v1/invitation-links - moderate limit by user
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(linksdk.ScopeWrite),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// DELETE /v1/invitation-links/{id} - moderate limit by user
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(linksdk.ScopeWrite),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/invitation-links", securedList)
	r.Mux.Handle("POST /v1/invitation-links", securedCreate)
	r.Mux.Handle("DELETE /v1/invitation-links/{id}", securedDelete)
}

func (r *Router) registerWelcome() {
	h := &WelcomeHandler{WelcomeService: r.WelcomeService}

	// GET /v1/welcome - public, strict by IP so codes cannot be enumerated
	r.Mux.Handle("GET /v1/welcome",
		httpx.Chain(http.HandlerFunc(h.HandleResolve),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/welcome/redeem - called by the registration flow
	r.Mux.Handle("POST /v1/welcome/redeem",
		httpx.Chain(http.HandlerFunc(h.HandleRedeem),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(linksdk.ScopeRedeem),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health checks - lenient, monitoring may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
