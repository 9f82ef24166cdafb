package models

import "time"

// Audit event types
const (
	EventTypeProductCreated  = "PRODUCT_CREATED"
	EventTypeProductUpdated  = "PRODUCT_UPDATED"
	EventTypeProductDeleted  = "PRODUCT_DELETED"
	EventTypeGroupBuyCreated = "GROUPBUY_CREATED"
	EventTypeGroupBuyJoined  = "GROUPBUY_JOINED"
	EventTypeGroupBuyDeleted = "GROUPBUY_DELETED"
	EventTypeOrderCreated    = "ORDER_CREATED"
	EventTypeOrderDeleted    = "ORDER_DELETED"
	EventTypeUserUpdated     = "USER_UPDATED"
	EventTypeUserDeleted     = "USER_DELETED"
	EventTypeLogin           = "LOGIN"
	EventTypeLogout          = "LOGOUT"
)

// BaseEvent contains common fields for all audit events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AdminActionEvent records a successful console mutation for the audit
// trail. It is published after the backend accepted the operation; it is
// never a source of truth.
type AdminActionEvent struct {
	BaseEvent
	Resource string `json:"resource"`
	Action   string `json:"action"`
	EntityID int64  `json:"entity_id,omitempty"`
	Actor    string `json:"actor,omitempty"`
}
