package log

import (
	"sort"

	"finboard/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldOperation   = "operation"
	FieldPeriod      = "period"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldSeed        = "seed"
	FieldRevision    = "revision"
	FieldKind        = "kind"
	FieldFilter      = "filter"
	FieldRecords     = "records"
	FieldAmountCents = "amount_cents"
	FieldMessageID   = "message_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentBoard     = "board"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentListener  = "listener"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

// Operations defines standard operation names
const (
	OpSelect   = "select"
	OpShift    = "shift"
	OpBuild    = "build"
	OpRestore  = "restore"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpLoad     = "load"
	OpSave     = "save"
	OpValidate = "validate"
	OpParse    = "parse"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message and its category. nil is ignored.
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		if errorType != "" {
			f[FieldErrorType] = errorType
		}
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithPeriod adds the period as "YYYY-MM" plus its year and month.
func (f LogFields) WithPeriod(p core.Period) LogFields {
	f[FieldPeriod] = p.String()
	f[FieldYear] = p.Year
	f[FieldMonth] = int(p.Month)
	return f
}

// WithSelection adds the fields identifying one generated dashboard.
func (f LogFields) WithSelection(p core.Period, seed uint64, revision string) LogFields {
	f.WithPeriod(p)
	f[FieldSeed] = seed
	if revision != "" {
		f[FieldRevision] = revision
	}
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to slog arguments, sorted by key so output is
// stable.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
