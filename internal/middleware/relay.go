package middleware

import (
	"crypto/subtle"
	"net/http"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/service"

	"github.com/rs/zerolog"
)

// RelayAuth admits requests carrying the shared relay key. An unset key is a
// server misconfiguration and never opens the endpoint.
func RelayAuth(relayKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context())

			if relayKey == "" {
				logger.Error().Msg("relay key is not configured")
				WriteError(w, service.RelayKeyNotSet())
				return
			}

			presented := r.Header.Get(constants.RelayKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(relayKey)) != 1 {
				logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("relay request rejected")
				WriteError(w, service.Unauthorized())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
