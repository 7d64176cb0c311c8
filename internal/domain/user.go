package domain

import "time"

// StaffRole enumerates back-office operator roles.
type StaffRole string

const (
	StaffRoleBureauOrdre        StaffRole = "BO"
	StaffRoleScan               StaffRole = "SCAN"
	StaffRoleGestionnaire       StaffRole = "GESTIONNAIRE"
	StaffRoleChefEquipe         StaffRole = "CHEF_EQUIPE"
	StaffRoleGestionnaireSenior StaffRole = "GESTIONNAIRE_SENIOR"
	StaffRoleSuperAdmin         StaffRole = "SUPER_ADMIN"
)

// User models a staff member. Every principal in the system is staff;
// adherents and client contacts never log in here.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         StaffRole
	// Capacity is the max number of concurrently open work items before the
	// capacity monitor flags the user. Nil falls back to the role default,
	// then to the global default.
	Capacity     *int
	TeamLeaderID *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
