package middleware

import (
	"net/http"

	"github.com/kbukum/forohub/util"
)

const defaultMaxBodySize = 1 << 20 // 1MB

// BodySizeLimit caps request bodies at maxSize (e.g. "1MB", "64KB"), or at
// 1MB when maxSize does not parse. Reads past the cap fail and the JSON
// binders turn that into a 400.
func BodySizeLimit(maxSize string) Middleware {
	size, err := util.ParseByteSize(maxSize)
	if err != nil {
		size = defaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}
