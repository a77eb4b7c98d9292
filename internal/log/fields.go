package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSheetID    = "sheet_id"
	FieldGID        = "gid"
	FieldRecords    = "records"
	FieldState      = "state"
	FieldDuration   = "duration_ms"
	FieldStatusCode = "status_code"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldClientIP   = "client_ip"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentRefresher = "refresher"
	ComponentSheets    = "sheets"
	ComponentWebhook   = "webhook"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
)

// Operations defines standard operation names.
const (
	OpConnect    = "connect"
	OpDisconnect = "disconnect"
	OpRefresh    = "refresh"
	OpFetch      = "fetch"
	OpAppend     = "append"
	OpParse      = "parse"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
