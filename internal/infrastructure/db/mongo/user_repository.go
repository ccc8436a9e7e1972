package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
	"github.com/univas/vaccination-scheduling/internal/core/ports"
)

const (
	collectionUsers         = "users"
	collectionSchedulings   = "schedulings"
	collectionApplications  = "vaccineApplications"
	collectionNotifications = "notifications"

	indexEmail = "users_email_unique"
	indexCPF   = "users_cpf_unique"
	indexCOREN = "users_coren_unique"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository is the user record store. The generic operations come from
// the embedded Store; the rest are user-specific queries built on it.
type UserRepository struct {
	*Store[domain.User, domain.UserFilter]

	schedulings   *Store[domain.Scheduling, bson.M]
	applications  *Store[domain.VaccineApplication, bson.M]
	notifications *Store[domain.Notification, bson.M]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		Store:         NewStore[domain.User](db.Collection(collectionUsers), userQuery),
		schedulings:   NewStore[domain.Scheduling](db.Collection(collectionSchedulings), QueryFilter),
		applications:  NewStore[domain.VaccineApplication](db.Collection(collectionApplications), QueryFilter),
		notifications: NewStore[domain.Notification](db.Collection(collectionNotifications), QueryFilter),
	}
}

// userQuery maps a UserFilter onto the users collection.
func userQuery(f domain.UserFilter) bson.M {
	q := bson.M{}
	if f.ID != "" {
		q[domain.FieldID] = f.ID
	}
	if f.Email != "" {
		q[domain.FieldEmail] = f.Email
	}
	if f.CPF != "" {
		q[domain.FieldCPF] = f.CPF
	}
	if f.COREN != "" {
		q[domain.FieldCOREN] = f.COREN
	}
	if f.Role != "" {
		q[domain.FieldRole] = string(f.Role)
	}
	if f.ActiveOnly {
		q[domain.FieldIsActive] = true
		q[domain.FieldDeletedAt] = nil
	}
	return q
}

// Create inserts u. Violations of the unique indexes come back as the
// matching duplicate error, so races past the service's pre-checks are
// reported the same way as the pre-checks themselves.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.Store.Create(ctx, u)
	if err != nil {
		return nil, duplicateUser(err)
	}
	return created, nil
}

func duplicateUser(err error) error {
	if !errors.Is(err, domain.ErrConflict) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, indexEmail):
		return domain.ErrDuplicateEmail
	case strings.Contains(msg, indexCPF):
		return domain.ErrDuplicateCPF
	case strings.Contains(msg, indexCOREN):
		return domain.ErrDuplicateCOREN
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return userResult(r.Store.FindByID(ctx, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByKey(ctx, email, domain.UserFilter{Email: email})
}

func (r *UserRepository) FindByCPF(ctx context.Context, cpf string) (*domain.User, error) {
	return r.findByKey(ctx, cpf, domain.UserFilter{CPF: cpf})
}

func (r *UserRepository) FindByCOREN(ctx context.Context, coren string) (*domain.User, error) {
	return r.findByKey(ctx, coren, domain.UserFilter{COREN: coren})
}

// findByKey looks up a single user by a unique key. An empty key would
// become the zero filter and match any record, so it never reaches the store.
func (r *UserRepository) findByKey(ctx context.Context, key string, f domain.UserFilter) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrUserNotFound
	}
	return userResult(r.FindOne(ctx, f))
}

func (r *UserRepository) FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return r.Find(ctx, domain.UserFilter{Role: role})
}

func (r *UserRepository) FindAllActive(ctx context.Context) ([]*domain.User, error) {
	return r.Find(ctx, domain.UserFilter{ActiveOnly: true})
}

func (r *UserRepository) FindActiveNurses(ctx context.Context) ([]*domain.User, error) {
	return r.Find(ctx, domain.UserFilter{Role: domain.RoleNurse, ActiveOnly: true})
}

func (r *UserRepository) FindActiveManagers(ctx context.Context) ([]*domain.User, error) {
	return r.Find(ctx, domain.UserFilter{Role: domain.RoleManager, ActiveOnly: true})
}

// FindByIDWithRelations loads the user with its schedulings, applications
// received and performed, and unread notifications newest first.
func (r *UserRepository) FindByIDWithRelations(ctx context.Context, id string) (*domain.UserWithRelations, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &domain.UserWithRelations{User: u}
	if out.SchedulingsReceived, err = r.schedulings.Find(ctx, bson.M{"userId": id}); err != nil {
		return nil, err
	}
	if out.ApplicationsReceived, err = r.applications.Find(ctx, bson.M{"receivedById": id}); err != nil {
		return nil, err
	}
	if out.ApplicationsPerformed, err = r.applications.Find(ctx, bson.M{"appliedById": id}); err != nil {
		return nil, err
	}
	newestFirst := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if out.Notifications, err = r.notifications.Find(ctx, bson.M{"userId": id, "isRead": false}, newestFirst); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.keyExists(ctx, email, domain.UserFilter{Email: email})
}

func (r *UserRepository) CPFExists(ctx context.Context, cpf string) (bool, error) {
	return r.keyExists(ctx, cpf, domain.UserFilter{CPF: cpf})
}

func (r *UserRepository) CORENExists(ctx context.Context, coren string) (bool, error) {
	return r.keyExists(ctx, coren, domain.UserFilter{COREN: coren})
}

// keyExists reports false for an empty key without querying.
func (r *UserRepository) keyExists(ctx context.Context, key string, f domain.UserFilter) (bool, error) {
	if key == "" {
		return false, nil
	}
	return r.Exists(ctx, f)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) (*domain.User, error) {
	return userResult(r.Update(ctx, id, ports.Changes{domain.FieldPassword: hash}))
}

func (r *UserRepository) ToggleActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	return userResult(r.Update(ctx, id, ports.Changes{domain.FieldIsActive: active}))
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return r.Count(ctx, domain.UserFilter{Role: role})
}

func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	return r.Count(ctx, domain.UserFilter{ActiveOnly: true})
}

// EnsureIndexes creates the unique constraints backing registration and the
// lookup indexes for the relation collections.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldEmail, Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexEmail)},
		{Keys: bson.D{{Key: domain.FieldCPF, Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexCPF)},
		{
			Keys: bson.D{{Key: domain.FieldCOREN, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexCOREN).
				SetPartialFilterExpression(bson.M{domain.FieldCOREN: bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: domain.FieldRole, Value: 1}, {Key: domain.FieldIsActive, Value: 1}}},
	}
	if _, err := r.Store.coll.Indexes().CreateMany(ctx, users); err != nil {
		return err
	}

	if _, err := r.schedulings.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}); err != nil {
		return err
	}
	if _, err := r.applications.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "receivedById", Value: 1}}},
		{Keys: bson.D{{Key: "appliedById", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := r.notifications.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

// userResult narrows the store's ErrNotFound to ErrUserNotFound.
func userResult(u *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}
