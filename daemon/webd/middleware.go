package webd

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	ghandlers "github.com/gorilla/handlers"
)

// tokenAuthenticationMiddleware checks for a valid token in the
// Authorization header, falling back to an api_token query param for
// clients that cannot set headers (eg. websocket reconnect URLs).
// An empty configured token allows all requests.
func (s *WebDaemon) tokenAuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		validToken := s.Config.Token
		if validToken == "" {
			s.logger.Warn("No populate token set, allowing all requests")
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Authorization")
		if token == "" {
			// Header token not set. Check the alternate protocol,
			// eg. motionlog.org:3600/populate/?api_token=asdfasdfb
			r.ParseForm()
			token = r.FormValue("api_token")
		}

		if token != validToken {
			s.logger.Warn("Invalid token",
				"token", fmt.Sprintf("%q", token),
				"method", r.Method, "url", r.URL, "proto", r.Proto,
				"host", r.Host, "remote-addr", r.RemoteAddr,
				"content-length", r.ContentLength,
				"user-agent", r.UserAgent())
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func permissiveCorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		next.ServeHTTP(w, r)
	})
}

func contentTypeMiddlewareFunc(contentType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			next.ServeHTTP(w, r)
		})
	}
}

// writeLog logs req roughly in Apache Common Log Format, with the
// X-Forwarded-For chain appended to the host so proxied movers stay
// attributable.
func writeLog(writer io.Writer, p ghandlers.LogFormatterParams) {
	host, _, err := net.SplitHostPort(p.Request.RemoteAddr)
	if err != nil {
		host = p.Request.RemoteAddr
	}
	for _, v := range p.Request.Header.Values("X-Forwarded-For") {
		host += "->" + v
	}

	uri := p.Request.RequestURI
	if uri == "" {
		uri = p.URL.RequestURI()
	}

	fmt.Fprintf(writer, "%s - [%s] %q %d %d\n",
		host,
		p.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
		fmt.Sprintf("%s %s %s", p.Request.Method, uri, p.Request.Proto),
		p.StatusCode, p.Size)
}

// https://github.com/gorilla/mux#middleware
func loggingMiddleware(next http.Handler) http.Handler {
	return ghandlers.CustomLoggingHandler(os.Stdout, next, writeLog)
}
