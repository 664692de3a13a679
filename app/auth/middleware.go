package auth

import (
	"context"
	"net/http"

	"postboard/app/models"
)

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the caller identity stored by Middleware, if any.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(models.Identity)
	if !ok || id.IsZero() {
		return models.Identity{}, false
	}
	return id, true
}

// Middleware resolves the Authorization header of every request. Requests
// without a valid credential pass through anonymously.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if id, ok := r.Resolve(req.Header.Get("Authorization")); ok {
			req = req.WithContext(WithIdentity(req.Context(), id))
		}
		next.ServeHTTP(w, req)
	})
}
