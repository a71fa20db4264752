package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldDayKey    = "day_key"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldAmount    = "amount"
	FieldTxType    = "tx_type"
	FieldRuleID    = "rule_id"
	FieldCreated   = "created"
	FieldBackend   = "backend"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentSession  = "session"
	ComponentCalendar = "calendar"
	ComponentVault    = "vault"
	ComponentStorage  = "storage"
	ComponentAuth     = "auth"
	ComponentEvents   = "events"
	ComponentExport   = "export"
)

// Operations defines standard operation names
const (
	OpAdd         = "add"
	OpDelete      = "delete"
	OpLoad        = "load"
	OpSave        = "save"
	OpMaterialize = "materialize"
	OpTransfer    = "transfer"
	OpSignIn      = "sign_in"
	OpSignOut     = "sign_out"
	OpExport      = "export"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)
