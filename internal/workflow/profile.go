package workflow

import "github.com/spec-kit/ars-claims-service/internal/domain"

// DefaultCapacity applies when neither the user record nor the role profile
// carries a capacity.
const DefaultCapacity = 20

// RoleProfile parameterizes classification for one staff role: which
// statuses the role sees at all, which of those mean "done" from its
// perspective, and how capacity limits apply. Profiles are data so that
// deployments can override the sets without touching the classifier.
type RoleProfile struct {
	Role            domain.StaffRole
	VisibleStatuses map[string]struct{}
	TerminalSet     map[string]struct{}
	// CapacityLimited marks roles the capacity monitor evaluates.
	CapacityLimited bool
	// DefaultCapacity is the per-role fallback when a user has no capacity
	// configured. Zero means use the global default.
	DefaultCapacity int
}

// Visible reports whether the role recognizes the status at all.
func (p RoleProfile) Visible(status string) bool {
	_, ok := p.VisibleStatuses[status]
	return ok
}

// Terminal reports whether the status counts as completed for the role.
func (p RoleProfile) Terminal(status string) bool {
	_, ok := p.TerminalSet[status]
	return ok
}

func statusSet(statuses ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// DefaultProfiles returns the shipped per-role configuration. Deployments
// may replace individual entries before constructing services.
func DefaultProfiles() map[domain.StaffRole]RoleProfile {
	processingVisible := statusSet(
		string(domain.BordereauStatusScanne),
		string(domain.BordereauStatusAAffecter),
		string(domain.BordereauStatusAssigne),
		string(domain.BordereauStatusEnCours),
		string(domain.BordereauStatusTraite),
		string(domain.BordereauStatusCloture),
		string(domain.BordereauStatusVirementExecute),
	)
	processingTerminal := statusSet(
		string(domain.BordereauStatusTraite),
		string(domain.BordereauStatusCloture),
		string(domain.BordereauStatusVirementExecute),
	)
	allStatuses := statusSet(
		string(domain.BordereauStatusEnAttente),
		string(domain.BordereauStatusAScanner),
		string(domain.BordereauStatusScanEnCours),
		string(domain.BordereauStatusScanne),
		string(domain.BordereauStatusAAffecter),
		string(domain.BordereauStatusAssigne),
		string(domain.BordereauStatusEnCours),
		string(domain.BordereauStatusTraite),
		string(domain.BordereauStatusCloture),
		string(domain.BordereauStatusVirementExecute),
		string(domain.BordereauStatusRejete),
		string(domain.DocumentStatusUploade),
		string(domain.DocumentStatusEnCoursScan),
		string(domain.DocumentStatusScanne),
		string(domain.DocumentStatusTraite),
		string(domain.DocumentStatusRejete),
	)

	return map[domain.StaffRole]RoleProfile{
		domain.StaffRoleBureauOrdre: {
			Role: domain.StaffRoleBureauOrdre,
			VisibleStatuses: statusSet(
				string(domain.BordereauStatusEnAttente),
				string(domain.BordereauStatusAScanner),
				string(domain.BordereauStatusRejete),
			),
			TerminalSet: statusSet(
				string(domain.BordereauStatusAScanner),
				string(domain.BordereauStatusRejete),
			),
		},
		domain.StaffRoleScan: {
			Role: domain.StaffRoleScan,
			VisibleStatuses: statusSet(
				string(domain.BordereauStatusAScanner),
				string(domain.BordereauStatusScanEnCours),
				string(domain.BordereauStatusScanne),
				string(domain.DocumentStatusUploade),
				string(domain.DocumentStatusEnCoursScan),
				string(domain.DocumentStatusScanne),
			),
			TerminalSet: statusSet(
				string(domain.BordereauStatusScanne),
				string(domain.DocumentStatusScanne),
			),
			CapacityLimited: true,
			DefaultCapacity: 30,
		},
		domain.StaffRoleGestionnaire: {
			Role:            domain.StaffRoleGestionnaire,
			VisibleStatuses: processingVisible,
			TerminalSet:     processingTerminal,
			CapacityLimited: true,
			DefaultCapacity: 20,
		},
		domain.StaffRoleChefEquipe: {
			Role:            domain.StaffRoleChefEquipe,
			VisibleStatuses: processingVisible,
			TerminalSet:     processingTerminal,
			CapacityLimited: true,
			DefaultCapacity: 10,
		},
		domain.StaffRoleGestionnaireSenior: {
			Role:            domain.StaffRoleGestionnaireSenior,
			VisibleStatuses: processingVisible,
			TerminalSet:     processingTerminal,
		},
		domain.StaffRoleSuperAdmin: {
			Role:            domain.StaffRoleSuperAdmin,
			VisibleStatuses: allStatuses,
			TerminalSet:     processingTerminal,
		},
	}
}

// CapacityFor resolves the effective capacity for a user under this profile.
func (p RoleProfile) CapacityFor(user *domain.User) int {
	if user != nil && user.Capacity != nil && *user.Capacity > 0 {
		return *user.Capacity
	}
	if p.DefaultCapacity > 0 {
		return p.DefaultCapacity
	}
	return DefaultCapacity
}
