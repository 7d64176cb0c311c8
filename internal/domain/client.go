package domain

import "time"

// Client represents an insured organization whose bordereaux we process.
type Client struct {
	ID   string
	Name string
	// AccountManagerID points at the gestionnaire senior responsible for
	// this client's portfolio.
	AccountManagerID *string
	// ReglementDelayDays is the client-level SLA fallback when a contract
	// does not carry its own.
	ReglementDelayDays *int
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Contract binds a client to processing terms for a period.
type Contract struct {
	ID       string
	ClientID string
	// DelaiReglementDays is the settlement SLA in days for bordereaux under
	// this contract.
	DelaiReglementDays *int
	// TeamLeaderID designates the chef d'équipe owning work routed under
	// this contract.
	TeamLeaderID *string
	StartsAt     time.Time
	EndsAt       *time.Time
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
