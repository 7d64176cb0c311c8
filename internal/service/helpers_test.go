package service

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// fakeUserRepo serves a fixed set of staff members.
type fakeUserRepo struct {
	users []domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = "u" + strconv.Itoa(len(f.users)+1)
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			user := f.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			user := f.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var result []domain.User
	for _, user := range f.users {
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		if filter.TeamLeaderID != nil {
			if user.TeamLeaderID == nil || *user.TeamLeaderID != *filter.TeamLeaderID {
				continue
			}
		}
		if len(filter.Roles) > 0 {
			match := false
			for _, role := range filter.Roles {
				if user.Role == role {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, user)
	}
	return result, nil
}

func (f *fakeUserRepo) ListSubordinates(ctx context.Context, leaderID string) ([]domain.User, error) {
	active := true
	return f.List(ctx, repository.UserFilter{TeamLeaderID: &leaderID, Active: &active})
}

// fakeBordereauRepo applies filters in memory.
type fakeBordereauRepo struct {
	bordereaux []domain.Bordereau
	openCounts map[string]int
}

func (f *fakeBordereauRepo) Create(_ context.Context, b *domain.Bordereau) error {
	b.ID = "b" + strconv.Itoa(len(f.bordereaux)+1)
	b.CreatedAt = testNow
	b.UpdatedAt = testNow
	f.bordereaux = append(f.bordereaux, *b)
	return nil
}

func (f *fakeBordereauRepo) Update(_ context.Context, b *domain.Bordereau) error {
	for i := range f.bordereaux {
		if f.bordereaux[i].ID == b.ID {
			f.bordereaux[i] = *b
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeBordereauRepo) GetByID(_ context.Context, id string) (*domain.Bordereau, error) {
	for i := range f.bordereaux {
		if f.bordereaux[i].ID == id {
			b := f.bordereaux[i]
			return &b, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeBordereauRepo) GetByReference(_ context.Context, reference string) (*domain.Bordereau, error) {
	for i := range f.bordereaux {
		if f.bordereaux[i].Reference == reference {
			b := f.bordereaux[i]
			return &b, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeBordereauRepo) ListWithFilter(_ context.Context, filter repository.BordereauFilter) ([]domain.Bordereau, error) {
	var result []domain.Bordereau
	for _, b := range f.bordereaux {
		if !filter.IncludeArchived && b.Archived {
			continue
		}
		if filter.ClientID != nil && b.ClientID != *filter.ClientID {
			continue
		}
		if len(filter.ClientIDs) > 0 && !containsString(filter.ClientIDs, b.ClientID) {
			continue
		}
		if len(filter.ContractIDs) > 0 {
			if b.ContractID == nil || !containsString(filter.ContractIDs, *b.ContractID) {
				continue
			}
		}
		if filter.TeamID != nil {
			if b.TeamID == nil || *b.TeamID != *filter.TeamID {
				continue
			}
		}
		if filter.AssignedToUserID != nil {
			if b.AssignedToUserID == nil || *b.AssignedToUserID != *filter.AssignedToUserID {
				continue
			}
		}
		if len(filter.AssignedToAnyOf) > 0 {
			if b.AssignedToUserID == nil || !containsString(filter.AssignedToAnyOf, *b.AssignedToUserID) {
				continue
			}
		}
		if filter.Unassigned != nil && *filter.Unassigned && b.AssignedToUserID != nil {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if b.Status == status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, b)
	}
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (f *fakeBordereauRepo) CountOpenByAssignee(_ context.Context, _ []domain.BordereauStatus) (map[string]int, error) {
	counts := make(map[string]int, len(f.openCounts))
	for k, v := range f.openCounts {
		counts[k] = v
	}
	return counts, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// paginate mimics the repositories' LIMIT/OFFSET handling, including the
// default page applied when the caller sets no limit.
func paginate[T any](rows []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// fakeDocumentRepo mirrors fakeBordereauRepo for documents.
type fakeDocumentRepo struct {
	documents  []domain.Document
	openCounts map[string]int
}

func (f *fakeDocumentRepo) Create(_ context.Context, d *domain.Document) error {
	d.ID = "d" + strconv.Itoa(len(f.documents)+1)
	f.documents = append(f.documents, *d)
	return nil
}

func (f *fakeDocumentRepo) Update(_ context.Context, d *domain.Document) error {
	for i := range f.documents {
		if f.documents[i].ID == d.ID {
			f.documents[i] = *d
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	for i := range f.documents {
		if f.documents[i].ID == id {
			d := f.documents[i]
			return &d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDocumentRepo) ListByBordereau(ctx context.Context, bordereauID string) ([]domain.Document, error) {
	return f.ListWithFilter(ctx, repository.DocumentFilter{BordereauID: &bordereauID, IncludeArchived: true})
}

func (f *fakeDocumentRepo) ListWithFilter(_ context.Context, filter repository.DocumentFilter) ([]domain.Document, error) {
	var result []domain.Document
	for _, d := range f.documents {
		if !filter.IncludeArchived && d.Archived {
			continue
		}
		if filter.BordereauID != nil && d.BordereauID != *filter.BordereauID {
			continue
		}
		if filter.AssignedToUserID != nil {
			if d.AssignedToUserID == nil || *d.AssignedToUserID != *filter.AssignedToUserID {
				continue
			}
		}
		if len(filter.AssignedToAnyOf) > 0 {
			if d.AssignedToUserID == nil || !containsString(filter.AssignedToAnyOf, *d.AssignedToUserID) {
				continue
			}
		}
		if filter.Unassigned != nil && *filter.Unassigned && d.AssignedToUserID != nil {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if d.Status == status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, d)
	}
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (f *fakeDocumentRepo) CountOpenByAssignee(_ context.Context, _ []domain.DocumentStatus) (map[string]int, error) {
	counts := make(map[string]int, len(f.openCounts))
	for k, v := range f.openCounts {
		counts[k] = v
	}
	return counts, nil
}

// fakeAlertRepo enforces the partial-unique-index invariant in memory and
// counts mutations so sweeps can be checked for idempotence.
type fakeAlertRepo struct {
	alerts       []domain.AlertRecord
	nextID       int
	failCreates  int
	createCalls  int
	updateCalls  int
	resolveCalls int
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *domain.AlertRecord) error {
	f.createCalls++
	if f.failCreates > 0 {
		f.failCreates--
		return &pgconn.PgError{Code: "23505"}
	}
	for _, existing := range f.alerts {
		if !existing.Resolved && existing.SubjectUserID == alert.SubjectUserID && existing.AlertType == alert.AlertType {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	f.nextID++
	alert.ID = "a" + strconv.Itoa(f.nextID)
	alert.CreatedAt = testNow
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlertRepo) FindUnresolved(_ context.Context, userID string, alertType domain.AlertType) (*domain.AlertRecord, error) {
	for i := range f.alerts {
		if !f.alerts[i].Resolved && f.alerts[i].SubjectUserID == userID && f.alerts[i].AlertType == alertType {
			alert := f.alerts[i]
			return &alert, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAlertRepo) UpdateMessage(_ context.Context, id, message string, level domain.AlertLevel) error {
	f.updateCalls++
	for i := range f.alerts {
		if f.alerts[i].ID == id && !f.alerts[i].Resolved {
			f.alerts[i].Message = message
			f.alerts[i].AlertLevel = level
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeAlertRepo) Resolve(_ context.Context, id string, at time.Time) error {
	f.resolveCalls++
	for i := range f.alerts {
		if f.alerts[i].ID == id && !f.alerts[i].Resolved {
			f.alerts[i].Resolved = true
			f.alerts[i].ResolvedAt = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeAlertRepo) List(_ context.Context, filter repository.AlertFilter) ([]domain.AlertRecord, error) {
	var result []domain.AlertRecord
	for _, alert := range f.alerts {
		if filter.SubjectUserID != nil && alert.SubjectUserID != *filter.SubjectUserID {
			continue
		}
		if filter.AlertType != nil && alert.AlertType != *filter.AlertType {
			continue
		}
		if filter.Resolved != nil && alert.Resolved != *filter.Resolved {
			continue
		}
		result = append(result, alert)
	}
	return result, nil
}

func (f *fakeAlertRepo) unresolvedCount() int {
	n := 0
	for _, alert := range f.alerts {
		if !alert.Resolved {
			n++
		}
	}
	return n
}

// fakeClientRepo serves a fixed set of clients.
type fakeClientRepo struct {
	clients []domain.Client
}

func (f *fakeClientRepo) Create(_ context.Context, client *domain.Client) error {
	client.ID = "c" + strconv.Itoa(len(f.clients)+1)
	f.clients = append(f.clients, *client)
	return nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	for i := range f.clients {
		if f.clients[i].ID == id {
			client := f.clients[i]
			return &client, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeClientRepo) ListByAccountManager(_ context.Context, userID string) ([]domain.Client, error) {
	var result []domain.Client
	for _, client := range f.clients {
		if client.Active && client.AccountManagerID != nil && *client.AccountManagerID == userID {
			result = append(result, client)
		}
	}
	return result, nil
}

// fakeContractRepo serves a fixed set of contracts.
type fakeContractRepo struct {
	contracts []domain.Contract
}

func (f *fakeContractRepo) Create(_ context.Context, contract *domain.Contract) error {
	contract.ID = "ct" + strconv.Itoa(len(f.contracts)+1)
	f.contracts = append(f.contracts, *contract)
	return nil
}

func (f *fakeContractRepo) GetByID(_ context.Context, id string) (*domain.Contract, error) {
	for i := range f.contracts {
		if f.contracts[i].ID == id {
			contract := f.contracts[i]
			return &contract, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeContractRepo) GetActiveByClient(_ context.Context, clientID string) (*domain.Contract, error) {
	for i := range f.contracts {
		if f.contracts[i].ClientID == clientID && f.contracts[i].Active {
			contract := f.contracts[i]
			return &contract, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeContractRepo) ListByTeamLeader(_ context.Context, userID string) ([]domain.Contract, error) {
	var result []domain.Contract
	for _, contract := range f.contracts {
		if contract.Active && contract.TeamLeaderID != nil && *contract.TeamLeaderID == userID {
			result = append(result, contract)
		}
	}
	return result, nil
}

// fakeReclamationRepo applies filters in memory.
type fakeReclamationRepo struct {
	reclamations []domain.Reclamation
}

func (f *fakeReclamationRepo) Create(_ context.Context, rec *domain.Reclamation) error {
	rec.ID = "r" + strconv.Itoa(len(f.reclamations)+1)
	rec.CreatedAt = testNow
	f.reclamations = append(f.reclamations, *rec)
	return nil
}

func (f *fakeReclamationRepo) Update(_ context.Context, rec *domain.Reclamation) error {
	for i := range f.reclamations {
		if f.reclamations[i].ID == rec.ID {
			f.reclamations[i] = *rec
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeReclamationRepo) GetByID(_ context.Context, id string) (*domain.Reclamation, error) {
	for i := range f.reclamations {
		if f.reclamations[i].ID == id {
			rec := f.reclamations[i]
			return &rec, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeReclamationRepo) ListWithFilter(_ context.Context, filter repository.ReclamationFilter) ([]domain.Reclamation, error) {
	var result []domain.Reclamation
	for _, rec := range f.reclamations {
		if filter.ClientID != nil && rec.ClientID != *filter.ClientID {
			continue
		}
		if filter.AssignedToUserID != nil {
			if rec.AssignedToUserID == nil || *rec.AssignedToUserID != *filter.AssignedToUserID {
				continue
			}
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if rec.Status == status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, rec)
	}
	return paginate(result, filter.Limit, filter.Offset), nil
}

// fakeHistoryRepo records entries for inspection. Setting createErr makes
// every insert fail, for exercising the audit-trail error path.
type fakeHistoryRepo struct {
	entries   []domain.TraitementHistory
	createErr error
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.TraitementHistory) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = "h" + strconv.Itoa(len(f.entries)+1)
	entry.CreatedAt = testNow
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByBordereau(_ context.Context, bordereauID string, _, _ int) ([]domain.TraitementHistory, error) {
	var result []domain.TraitementHistory
	for _, entry := range f.entries {
		if entry.BordereauID == bordereauID {
			result = append(result, entry)
		}
	}
	return result, nil
}
