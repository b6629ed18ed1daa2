package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// In-memory repository fakes for service tests.

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.nextID++
	ticket.ID = fmt.Sprintf("t-%d", f.nextID)
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	f.tickets[ticket.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now().UTC()
	clone := *ticket
	f.tickets[ticket.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (f *fakeTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	for _, ticket := range f.tickets {
		if ticket.ExternalKey == key {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) ListOpen(_ context.Context, _ int) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Status == domain.TicketStatusOpen || ticket.Status == domain.TicketStatusInProgress {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	counts := make(map[domain.TicketStatus]int)
	for _, ticket := range f.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func (f *fakeTicketRepo) CountByPriority(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, ticket := range f.tickets {
		counts[ticket.PriorityID]++
	}
	return counts, nil
}

func (f *fakeTicketRepo) CountByCategory(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, ticket := range f.tickets {
		counts[ticket.CategoryID]++
	}
	return counts, nil
}

func (f *fakeTicketRepo) ListResolvedSince(_ context.Context, since time.Time, _ int) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.ResolvedAt != nil && !ticket.ResolvedAt.Before(since) {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func newFakeCategoryRepo(categories ...domain.Category) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[string]*domain.Category)}
	for i := range categories {
		c := categories[i]
		repo.categories[c.ID] = &c
	}
	return repo
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	category.ID = fmt.Sprintf("c-%d", len(f.categories)+1)
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if _, ok := f.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeCategoryRepo) SetArchived(_ context.Context, id string, archived bool) error {
	category, ok := f.categories[id]
	if !ok {
		return pgx.ErrNoRows
	}
	category.Archived = archived
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *category
	return &clone, nil
}

func (f *fakeCategoryRepo) List(_ context.Context, includeArchived bool) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range f.categories {
		if !includeArchived && category.Archived {
			continue
		}
		result = append(result, *category)
	}
	return result, nil
}

type fakePriorityRepo struct {
	priorities map[string]*domain.Priority
}

func newFakePriorityRepo(priorities ...domain.Priority) *fakePriorityRepo {
	repo := &fakePriorityRepo{priorities: make(map[string]*domain.Priority)}
	for i := range priorities {
		p := priorities[i]
		repo.priorities[p.ID] = &p
	}
	return repo
}

func (f *fakePriorityRepo) GetByID(_ context.Context, id string) (*domain.Priority, error) {
	priority, ok := f.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *priority
	return &clone, nil
}

func (f *fakePriorityRepo) List(_ context.Context) ([]domain.Priority, error) {
	var result []domain.Priority
	for _, priority := range f.priorities {
		result = append(result, *priority)
	}
	return result, nil
}

func (f *fakePriorityRepo) UpdateAppearance(_ context.Context, id, description, color string) error {
	priority, ok := f.priorities[id]
	if !ok {
		return pgx.ErrNoRows
	}
	priority.Description = description
	priority.Color = color
	return nil
}

type fakeCommentRepo struct {
	comments []domain.TicketComment
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	comment.ID = fmt.Sprintf("cm-%d", len(f.comments)+1)
	comment.CreatedAt = time.Now().UTC()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	var result []domain.TicketComment
	for _, comment := range f.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if !includeInternal && comment.CommentType == domain.CommentTypeInternalNote {
			continue
		}
		result = append(result, comment)
	}
	return result, nil
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	entry.ID = fmt.Sprintf("h-%d", len(f.entries)+1)
	entry.CreatedAt = time.Now().UTC()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeSettingsRepo struct {
	values map[string]string
}

func (f *fakeSettingsRepo) GetAll(_ context.Context) (map[string]string, error) {
	result := make(map[string]string, len(f.values))
	for k, v := range f.values {
		result[k] = v
	}
	return result, nil
}

func (f *fakeSettingsRepo) Set(_ context.Context, key, value string, _ *string) error {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

type fakeSlaTargetRepo struct {
	targets map[string]domain.SlaTarget
}

func (f *fakeSlaTargetRepo) GetByPriority(_ context.Context, priorityID string) (*domain.SlaTarget, error) {
	target, ok := f.targets[priorityID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &target, nil
}

func (f *fakeSlaTargetRepo) GetAll(_ context.Context) (map[string]domain.SlaTarget, error) {
	result := make(map[string]domain.SlaTarget, len(f.targets))
	for k, v := range f.targets {
		result[k] = v
	}
	return result, nil
}

func (f *fakeSlaTargetRepo) Upsert(_ context.Context, target *domain.SlaTarget) error {
	if f.targets == nil {
		f.targets = make(map[string]domain.SlaTarget)
	}
	target.UpdatedAt = time.Now().UTC()
	f.targets[target.PriorityID] = *target
	return nil
}

type fakeStaffRepo struct {
	members map[string]*domain.StaffMember
}

func newFakeStaffRepo(members ...domain.StaffMember) *fakeStaffRepo {
	repo := &fakeStaffRepo{members: make(map[string]*domain.StaffMember)}
	for i := range members {
		m := members[i]
		repo.members[m.ID] = &m
	}
	return repo
}

func (f *fakeStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	staff.ID = fmt.Sprintf("s-%d", len(f.members)+1)
	staff.CreatedAt = time.Now().UTC()
	clone := *staff
	f.members[staff.ID] = &clone
	return nil
}

func (f *fakeStaffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	if _, ok := f.members[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *staff
	f.members[staff.ID] = &clone
	return nil
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	staff, ok := f.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *staff
	return &clone, nil
}

func (f *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	for _, staff := range f.members {
		if staff.Email == email {
			clone := *staff
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStaffRepo) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	var result []domain.StaffMember
	for _, staff := range f.members {
		if filter.Role != nil && staff.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && staff.Active != *filter.Active {
			continue
		}
		result = append(result, *staff)
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = fmt.Sprintf("u-%d", len(f.users)+1)
	user.CreatedAt = time.Now().UTC()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (f *fakeResetRepo) Create(_ context.Context, reset *repository.PasswordResetToken) error {
	reset.ID = fmt.Sprintf("r-%d", len(f.tokens)+1)
	clone := *reset
	f.tokens[reset.ID] = &clone
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	for _, reset := range f.tokens {
		if reset.Token == token {
			clone := *reset
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	reset, ok := f.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now().UTC()
	reset.UsedAt = &now
	return nil
}
