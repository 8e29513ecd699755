package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recoverer turns a handler panic into a 500 with a fixed JSON message and
// logs the stack on the request logger. http.ErrAbortHandler is re-raised as
// net/http expects.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			zerolog.Ctx(r.Context()).Error().
				Interface("panic", rvr).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"伺服器錯誤"}`))
		}()
		next.ServeHTTP(w, r)
	})
}
