package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
	"github.com/univas/vaccination-scheduling/internal/core/ports"
	"github.com/univas/vaccination-scheduling/internal/infrastructure/security"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	relations map[string]*domain.UserWithRelations
	calls     []string // method names, in call order
	creates   int
	nextID    int
	createErr error // if set, Create returns this error
	existsErr error // if set, the *Exists methods return this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:     make(map[string]*domain.User),
		relations: make(map[string]*domain.UserWithRelations),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) match(u *domain.User, f domain.UserFilter) bool {
	switch {
	case f.ID != "" && u.ID != f.ID,
		f.Email != "" && u.Email != f.Email,
		f.CPF != "" && u.CPF != f.CPF,
		f.COREN != "" && (u.COREN == nil || *u.COREN != f.COREN),
		f.Role != "" && u.Role != f.Role,
		f.ActiveOnly && (!u.IsActive || u.Deleted()):
		return false
	}
	return true
}

func (r *stubUserRepo) find(f domain.UserFilter) []*domain.User {
	var out []*domain.User
	for _, u := range r.users {
		if r.match(u, f) {
			out = append(out, cloneUser(u))
		}
	}
	return out
}

func (r *stubUserRepo) first(f domain.UserFilter) (*domain.User, error) {
	found := r.find(f)
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}
	return found[0], nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.calls = append(r.calls, "FindByID")
	return r.first(domain.UserFilter{ID: id})
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	return r.find(domain.UserFilter{}), nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.calls = append(r.calls, "Create")
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.creates++
	r.nextID++
	stored := cloneUser(u)
	stored.ID = "user-" + strconv.Itoa(r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, changes ports.Changes) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for k, v := range changes {
		switch k {
		case domain.FieldPassword:
			u.Password = v.(string)
		case domain.FieldIsActive:
			u.IsActive = v.(bool)
		case domain.FieldDeletedAt:
			ts := v.(time.Time)
			u.DeletedAt = &ts
		}
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.users, id)
	return u, nil
}

func (r *stubUserRepo) SoftDelete(ctx context.Context, id string) (*domain.User, error) {
	return r.Update(ctx, id, ports.Changes{domain.FieldDeletedAt: time.Now().UTC(), domain.FieldIsActive: false})
}

func (r *stubUserRepo) Count(_ context.Context, f domain.UserFilter) (int64, error) {
	return int64(len(r.find(f))), nil
}

func (r *stubUserRepo) Exists(ctx context.Context, f domain.UserFilter) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	n, _ := r.Count(ctx, f)
	return n > 0, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.first(domain.UserFilter{Email: email})
}

func (r *stubUserRepo) FindByCPF(_ context.Context, cpf string) (*domain.User, error) {
	return r.first(domain.UserFilter{CPF: cpf})
}

func (r *stubUserRepo) FindByCOREN(_ context.Context, coren string) (*domain.User, error) {
	return r.first(domain.UserFilter{COREN: coren})
}

func (r *stubUserRepo) FindByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	return r.find(domain.UserFilter{Role: role}), nil
}

func (r *stubUserRepo) FindAllActive(_ context.Context) ([]*domain.User, error) {
	return r.find(domain.UserFilter{ActiveOnly: true}), nil
}

func (r *stubUserRepo) FindActiveNurses(_ context.Context) ([]*domain.User, error) {
	return r.find(domain.UserFilter{Role: domain.RoleNurse, ActiveOnly: true}), nil
}

func (r *stubUserRepo) FindActiveManagers(_ context.Context) ([]*domain.User, error) {
	return r.find(domain.UserFilter{Role: domain.RoleManager, ActiveOnly: true}), nil
}

func (r *stubUserRepo) FindByIDWithRelations(_ context.Context, id string) (*domain.UserWithRelations, error) {
	r.calls = append(r.calls, "FindByIDWithRelations")
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rel, ok := r.relations[id]; ok {
		out := *rel
		out.User = cloneUser(u)
		return &out, nil
	}
	return &domain.UserWithRelations{User: cloneUser(u)}, nil
}

func (r *stubUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.calls = append(r.calls, "EmailExists")
	return r.Exists(ctx, domain.UserFilter{Email: email})
}

func (r *stubUserRepo) CPFExists(ctx context.Context, cpf string) (bool, error) {
	r.calls = append(r.calls, "CPFExists")
	return r.Exists(ctx, domain.UserFilter{CPF: cpf})
}

func (r *stubUserRepo) CORENExists(ctx context.Context, coren string) (bool, error) {
	r.calls = append(r.calls, "CORENExists")
	return r.Exists(ctx, domain.UserFilter{COREN: coren})
}

func (r *stubUserRepo) UpdatePassword(ctx context.Context, id, hash string) (*domain.User, error) {
	return r.Update(ctx, id, ports.Changes{domain.FieldPassword: hash})
}

func (r *stubUserRepo) ToggleActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	return r.Update(ctx, id, ports.Changes{domain.FieldIsActive: active})
}

func (r *stubUserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return r.Count(ctx, domain.UserFilter{Role: role})
}

func (r *stubUserRepo) CountActive(ctx context.Context) (int64, error) {
	return r.Count(ctx, domain.UserFilter{ActiveOnly: true})
}

func (r *stubUserRepo) called(name string) bool {
	for _, c := range r.calls {
		if c == name {
			return true
		}
	}
	return false
}

type stubProfileCache struct {
	profiles map[string]*domain.Profile
	getErr   error
	sets     int
}

func newStubProfileCache() *stubProfileCache {
	return &stubProfileCache{profiles: make(map[string]*domain.Profile)}
}

func (c *stubProfileCache) Get(_ context.Context, id string) (*domain.Profile, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.profiles[id], nil
}

func (c *stubProfileCache) Set(_ context.Context, p *domain.Profile) error {
	c.sets++
	c.profiles[p.ID] = p
	return nil
}

func strPtr(s string) *string { return &s }

func newTestUserService(repo *stubUserRepo) *UserService {
	svc := NewUserService(repo, security.NewBcryptHasher(bcrypt.MinCost), nil, zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func anaInput() ports.CreateUserInput {
	return ports.CreateUserInput{
		Name:     "Ana",
		Email:    "ana@x.com",
		Password: "p1",
		CPF:      "111",
		Role:     domain.RoleEmployee,
	}
}

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func TestUserService_CreateUser_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	resp, err := svc.CreateUser(context.Background(), anaInput())
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if !resp.IsActive {
		t.Fatalf("expected new user to be active")
	}
	if !resp.CreatedAt.Equal(resp.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt, got %v / %v", resp.CreatedAt, resp.UpdatedAt)
	}
	if resp.Role != domain.RoleEmployee || resp.Email != "ana@x.com" || resp.CPF != "111" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.COREN != nil || resp.Phone != nil {
		t.Fatalf("expected optional fields to be nil: %+v", resp)
	}

	stored := repo.users[resp.ID]
	if stored.Password == "p1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("p1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.DeletedAt != nil {
		t.Fatalf("expected deletedAt to be nil")
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly one write, got %d", repo.creates)
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	if _, err := svc.CreateUser(context.Background(), anaInput()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	in := anaInput()
	in.CPF = "222"
	_, err := svc.CreateUser(context.Background(), in)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected no new record, got %d writes", repo.creates)
	}
}

func TestUserService_CreateUser_DuplicateEmail_SoftDeleted(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	first, err := svc.CreateUser(context.Background(), anaInput())
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := repo.SoftDelete(context.Background(), first.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	in := anaInput()
	in.CPF = "222"
	if _, err := svc.CreateUser(context.Background(), in); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail for soft-deleted email, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected no new record, got %d writes", repo.creates)
	}
}

func TestUserService_CreateUser_DuplicateCPF(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)
	_, _ = svc.CreateUser(context.Background(), anaInput())

	in := anaInput()
	in.Email = "other@x.com"
	if _, err := svc.CreateUser(context.Background(), in); !errors.Is(err, domain.ErrDuplicateCPF) {
		t.Fatalf("expected ErrDuplicateCPF, got %v", err)
	}
}

func TestUserService_CreateUser_NurseMissingCOREN(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	in := anaInput()
	in.Role = domain.RoleNurse

	_, err := svc.CreateUser(context.Background(), in)
	if !errors.Is(err, domain.ErrMissingCOREN) {
		t.Fatalf("expected ErrMissingCOREN, got %v", err)
	}
	if repo.called("CORENExists") {
		t.Fatalf("COREN uniqueness must not be checked when COREN is absent")
	}
	if repo.creates != 0 {
		t.Fatalf("expected no write, got %d", repo.creates)
	}

	in.COREN = strPtr("")
	if _, err := svc.CreateUser(context.Background(), in); !errors.Is(err, domain.ErrMissingCOREN) {
		t.Fatalf("expected ErrMissingCOREN for empty COREN, got %v", err)
	}
}

func TestUserService_CreateUser_NurseDuplicateCOREN(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	nurse := anaInput()
	nurse.Role = domain.RoleNurse
	nurse.COREN = strPtr("COREN-1")
	if _, err := svc.CreateUser(context.Background(), nurse); err != nil {
		t.Fatalf("first nurse failed: %v", err)
	}

	second := nurse
	second.Email = "bia@x.com"
	second.CPF = "333"
	if _, err := svc.CreateUser(context.Background(), second); !errors.Is(err, domain.ErrDuplicateCOREN) {
		t.Fatalf("expected ErrDuplicateCOREN, got %v", err)
	}
}

func TestUserService_CreateUser_NonNurseSkipsCORENCheck(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	in := anaInput()
	in.Role = domain.RoleManager
	in.COREN = strPtr("COREN-9")
	resp, err := svc.CreateUser(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if repo.called("CORENExists") {
		t.Fatalf("COREN uniqueness is only checked for nurses")
	}
	if resp.COREN == nil || *resp.COREN != "COREN-9" {
		t.Fatalf("expected COREN to be stored, got %v", resp.COREN)
	}
}

func TestUserService_CreateUser_CheckOrder(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	in := anaInput()
	in.Role = domain.RoleNurse
	in.COREN = strPtr("COREN-2")
	if _, err := svc.CreateUser(context.Background(), in); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	want := []string{"EmailExists", "CPFExists", "CORENExists", "Create"}
	if len(repo.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, repo.calls)
	}
	for i := range want {
		if repo.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, repo.calls)
		}
	}
}

func TestUserService_CreateUser_InvalidRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	in := anaInput()
	in.Role = "ADMIN"
	if _, err := svc.CreateUser(context.Background(), in); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("expected no store calls, got %v", repo.calls)
	}
}

func TestUserService_CreateUser_RaceReportedAsDuplicate(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = domain.ErrDuplicateEmail
	svc := newTestUserService(repo)

	if _, err := svc.CreateUser(context.Background(), anaInput()); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail from store constraint, got %v", err)
	}
}

func TestUserService_CreateUser_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	boom := errors.New("connection refused")
	repo.existsErr = boom
	svc := newTestUserService(repo)

	_, err := svc.CreateUser(context.Background(), anaInput())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if domain.IsDuplicate(err) {
		t.Fatalf("infrastructure error must not look like a duplicate")
	}
	if repo.creates != 0 {
		t.Fatalf("expected no write, got %d", repo.creates)
	}
}

// ---------------------------------------------------------------------------
// GetProfile
// ---------------------------------------------------------------------------

func TestUserService_GetProfile(t *testing.T) {
	repo := newStubUserRepo()
	cache := newStubProfileCache()
	svc := newTestUserService(repo)
	svc.cache = cache

	created, err := svc.CreateUser(context.Background(), anaInput())
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	repo.relations[created.ID] = &domain.UserWithRelations{
		Notifications: []*domain.Notification{{ID: "n1", UserID: created.ID, Title: "Lembrete"}},
	}

	profile, err := svc.GetProfile(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.ID != created.ID || len(profile.Notifications) != 1 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if cache.sets != 1 {
		t.Fatalf("expected profile to be cached, got %d sets", cache.sets)
	}

	repo.calls = nil
	if _, err := svc.GetProfile(context.Background(), created.ID); err != nil {
		t.Fatalf("GetProfile (cached): %v", err)
	}
	if repo.called("FindByIDWithRelations") {
		t.Fatalf("expected cached profile to skip the store")
	}
}

func TestUserService_GetProfile_CacheErrorFallsBackToStore(t *testing.T) {
	repo := newStubUserRepo()
	cache := newStubProfileCache()
	cache.getErr = errors.New("redis down")
	svc := newTestUserService(repo)
	svc.cache = cache

	created, _ := svc.CreateUser(context.Background(), anaInput())
	if _, err := svc.GetProfile(context.Background(), created.ID); err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !repo.called("FindByIDWithRelations") {
		t.Fatalf("expected store read after cache failure")
	}
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	if _, err := svc.GetProfile(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	created, _ := svc.CreateUser(context.Background(), anaInput())
	_, _ = repo.SoftDelete(context.Background(), created.ID)
	if _, err := svc.GetProfile(context.Background(), created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for soft-deleted user, got %v", err)
	}
}

func TestUserService_CreateUser_LeavesInputIntact(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	in := anaInput()
	if _, err := svc.CreateUser(context.Background(), in); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if in.Password != "p1" {
		t.Fatalf("expected caller input password to be kept, got %q", in.Password)
	}
}
