package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusNew       = "NEW"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Cart draft lifecycle (in-memory only, never persisted).
const (
	CartStateEmpty            = "EMPTY"
	CartStatePopulated        = "POPULATED"
	CartStateSubmitting       = "SUBMITTING"
	CartStateSubmitted        = "SUBMITTED"
	CartStateSubmissionFailed = "SUBMISSION_FAILED"
)

// ── Roles and order types (CHECK constrained in DB) ──

const (
	UserRoleAdmin = "ADMIN"
	UserRoleStaff = "STAFF"
)

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

// ── Configurable labels (no DB constraint) ──

// Item kinds distinguish the two halves of a legacy order record.
const (
	ItemKindMenu      = "menu"
	ItemKindBreakfast = "breakfast"
)
