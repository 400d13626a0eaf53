package logging

// Field names for structured logging.
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldMovementID = "movement_id"
	FieldCategoryID = "category_id"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldType       = "type"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldCount      = "count"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentUser      = "user"
	ComponentCategory  = "category"
	ComponentMovement  = "movement"
	ComponentReport    = "report"
	ComponentDatabase  = "database"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operation names.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSeed     = "seed"
	OpMigrate  = "migrate"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpRegister = "register"
)
