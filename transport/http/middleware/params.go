package middleware

import (
	"hostel/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UUIDParam answers with notFound when the named path parameter is not a
// UUID. Records are keyed by UUID, so no other value can name one.
func UUIDParam(param string, notFound error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := uuid.Parse(chi.URLParam(r, param)); err != nil {
				response.WithError(w, notFound)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
