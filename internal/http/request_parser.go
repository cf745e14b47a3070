package http

// Parsing and validation of query and body parameters. Missing period
// parameters fall back to the current selection; malformed ones are errors.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/widgets"
)

// ErrInvalidParam is returned for malformed request parameters.
var ErrInvalidParam = errors.New("invalid parameter")

const (
	maxBodyBytes = 64 << 10

	// MaxDelta bounds a single shift to one hundred years.
	MaxDelta = 1200

	MaxNotifications = 50
	MaxHistory       = 100
)

// ParsePeriodParams reads "year" and "month" from values. Either may be
// omitted, in which case the fallback's value is used.
func ParsePeriodParams(values url.Values, fallback core.Period) (core.Period, error) {
	p := fallback
	if v := strings.TrimSpace(values.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: year %q", core.ErrInvalidYear, v)
		}
		p.Year = y
	}
	if v := strings.TrimSpace(values.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: month %q", core.ErrInvalidMonth, v)
		}
		p.Month = time.Month(m)
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// ParseYearParam reads "year", defaulting to fallback.
func ParseYearParam(values url.Values, fallback int) (int, error) {
	p, err := ParsePeriodParams(url.Values{"year": {values.Get("year")}}, core.Period{Year: fallback, Month: time.January})
	if err != nil {
		return 0, err
	}
	return p.Year, nil
}

// ParseFilterParam reads "filter"; empty means all.
func ParseFilterParam(values url.Values) (widgets.Filter, error) {
	return widgets.ParseFilter(values.Get("filter"))
}

// ParseLimitParam reads a positive "limit" no larger than max.
func ParseLimitParam(values url.Values, def, max int) (int, error) {
	v := strings.TrimSpace(values.Get("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d, got %q", ErrInvalidParam, max, v)
	}
	return n, nil
}

// ParseDelta parses a non-zero month offset.
func ParseDelta(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: delta is required", ErrInvalidParam)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil || n == 0 || n < -MaxDelta || n > MaxDelta {
		return 0, fmt.Errorf("%w: delta %q", ErrInvalidParam, s)
	}
	return n, nil
}

// RequestBodyParser reads a JSON object or form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most 64KiB of the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("%w: read body: %v", ErrInvalidParam, p.err)
	}
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: malformed JSON: %v", ErrInvalidParam, err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(body)
	if p.err != nil {
		p.err = fmt.Errorf("%w: malformed form: %v", ErrInvalidParam, p.err)
	}
	return p.err
}

// Get returns a field of the parsed body, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values returns the parsed fields as url.Values so the query parsers can
// be reused on bodies.
func (p *RequestBodyParser) Values(keys ...string) url.Values {
	out := url.Values{}
	for _, k := range keys {
		if v := p.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// wantsHTML reports whether the caller is a browser form submission that
// should be redirected back to the page rather than given JSON.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html") &&
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
