package httpx

import (
	"net/http"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// RequireAnyScope lets the request through when the caller holds at least
// one of the scopes.
func RequireAnyScope(required ...string) Middleware {
	want := set.From(required)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range scopesFromCtx(r.Context()) {
				if want.Contains(s) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeBearerScopeError(w, required...)
		})
	}
}

// RFC 6750 insufficient_scope response.
func writeBearerScopeError(w http.ResponseWriter, required ...string) {
	scope := strings.Join(required, " ")
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+scope+`"`)
	WriteError(w, http.StatusForbidden, "insufficient_scope", "the access token lacks scope: "+scope)
}
