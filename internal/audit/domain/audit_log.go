package domain

import "time"

// AuditLog represents a security-relevant handshake event.
type AuditLog struct {
	ID        string
	Actor     string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
