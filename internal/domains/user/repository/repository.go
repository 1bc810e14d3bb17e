package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"hostel/infras/otel"
	"hostel/infras/postgres"
	"hostel/internal/domains/user/model"
	"hostel/shared"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	gRepo "hostel/shared/repository"
	"strings"
)

// ErrUsernameTaken is returned when the unique username index rejects an
// insert that raced past the existence check.
var ErrUsernameTaken = errors.New("username already taken")

type User interface {
	Insert(ctx context.Context, user model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByLogin(ctx context.Context, identifier string) (model.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, params gDto.QueryParams) ([]model.User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type repositoryImpl struct {
	users gRepo.Repository[model.User]
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		users: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func byLogin(identifier string) gDto.FilterGroup {
	key := loginKey(identifier)

	return gDto.FilterGroup{
		Filters: []any{
			gDto.Eq(model.TableName, model.FieldUsername, key),
			gDto.Eq(model.TableName, model.FieldEmail, key),
		},
		Operator: gDto.FilterGroupOperatorOr,
	}
}

// loginKey is the form usernames and emails are stored in.
func loginKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (r *repositoryImpl) Insert(ctx context.Context, user model.User) error {
	user.Username = loginKey(user.Username)

	err := r.users.Insert(ctx, user)
	if gRepo.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrUsernameTaken, err)
	}

	return err
}

func (r *repositoryImpl) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.users.Get(ctx, byID(id))
}

// GetByLogin finds the account whose username or email matches identifier.
func (r *repositoryImpl) GetByLogin(ctx context.Context, identifier string) (model.User, error) {
	return r.users.Get(ctx, byLogin(identifier))
}

func (r *repositoryImpl) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.users.Exist(ctx, gDto.And(gDto.Eq(model.TableName, model.FieldUsername, loginKey(username))))
}

func (r *repositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	return r.users.Exist(ctx, byID(id))
}

// List pages through the accounts, newest first unless params sort otherwise.
func (r *repositoryImpl) List(ctx context.Context, params gDto.QueryParams) ([]model.User, error) {
	if params.SortBy == "" {
		params.SortBy, params.SortDir = constant.FieldCreatedAt, gDto.SortDirDesc
	}

	return r.users.GetAll(ctx, params, gDto.FilterGroup{})
}

func (r *repositoryImpl) Count(ctx context.Context) (int, error) {
	return r.users.Count(ctx, gDto.FilterGroup{})
}

func (r *repositoryImpl) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.users.Update(ctx, fields, byID(id))
}

func (r *repositoryImpl) Delete(ctx context.Context, id string) error {
	return r.users.Delete(ctx, byID(id))
}
