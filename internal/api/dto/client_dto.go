package dto

import "time"

// ClientRequest payload.
type ClientRequest struct {
	Name               string  `json:"name"`
	AccountManagerID   *string `json:"account_manager_id"`
	ReglementDelayDays *int    `json:"reglement_delay_days"`
}

// ClientResponse represents an insured organization.
type ClientResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	AccountManagerID   *string `json:"account_manager_id"`
	ReglementDelayDays *int    `json:"reglement_delay_days"`
	Active             bool    `json:"active"`
}

// ContractRequest payload.
type ContractRequest struct {
	ClientID           string     `json:"client_id"`
	DelaiReglementDays *int       `json:"delai_reglement_days"`
	TeamLeaderID       *string    `json:"team_leader_id"`
	StartsAt           *time.Time `json:"starts_at"`
	EndsAt             *time.Time `json:"ends_at"`
}

// ContractResponse represents processing terms for a client.
type ContractResponse struct {
	ID                 string     `json:"id"`
	ClientID           string     `json:"client_id"`
	DelaiReglementDays *int       `json:"delai_reglement_days"`
	TeamLeaderID       *string    `json:"team_leader_id"`
	StartsAt           time.Time  `json:"starts_at"`
	EndsAt             *time.Time `json:"ends_at"`
	Active             bool       `json:"active"`
}
