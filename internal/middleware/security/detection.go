package security

import (
	"net/http"
	"strings"
	"sync/atomic"

	"finboard/internal/log"
)

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	suspiciousAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

const maxURLLength = 2048

// Detector flags requests that look like scans or injection attempts. It
// only logs and counts; blocking is left to the rate limiter.
type Detector struct {
	logger     *log.Logger
	clientIP   func(*http.Request) string
	suspicious atomic.Int64
}

func NewDetector(logger *log.Logger, clientIP func(*http.Request) string) *Detector {
	return &Detector{
		logger:   logger.WithComponent(log.ComponentSecurity),
		clientIP: clientIP,
	}
}

// Suspicious reports why r looks hostile, or "" when it does not.
func Suspicious(r *http.Request) string {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return "pattern " + p
		}
	}

	ua := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range suspiciousAgents {
		if strings.Contains(ua, a) {
			return "user agent " + a
		}
	}

	for _, m := range unusualMethods {
		if r.Method == m {
			return "method " + m
		}
	}

	if len(r.URL.String()) > maxURLLength {
		return "url too long"
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return "forwarding chain too long"
	}
	return ""
}

func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := Suspicious(r); reason != "" {
			d.suspicious.Add(1)
			clientIP := ""
			if d.clientIP != nil {
				clientIP = d.clientIP(r)
			}
			logger := d.logger
			if l, ok := r.Context().Value(log.LoggerContextKey).(*log.Logger); ok {
				logger = l.WithComponent(log.ComponentSecurity)
			}
			fields := log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
				WithClientIP(clientIP)
			fields["reason"] = reason
			logger.WarnContext(r.Context(), "Suspicious request", fields.ToSlice()...)
		}
		next.ServeHTTP(w, r)
	})
}

// SuspiciousRequests returns how many requests were flagged.
func (d *Detector) SuspiciousRequests() int64 {
	return d.suspicious.Load()
}
