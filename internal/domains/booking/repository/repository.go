package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"hostel/infras/otel"
	"hostel/infras/postgres"
	"hostel/internal/domains/booking/model"
	"hostel/shared"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	gRepo "hostel/shared/repository"
	"hostel/shared/timezone"
)

// ErrBedTaken is returned when the (floor, room, bed) unique constraint
// rejects a write because another booking already holds the bed.
var ErrBedTaken = errors.New("bed already taken")

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	FindByRoom(ctx context.Context, floor, room int) ([]model.Booking, error)
	FindOccupant(ctx context.Context, floor, room, bed int, excludeID string) (model.Booking, error)
	UpdatePlacement(ctx context.Context, id string, floor, room, bed int, actor string) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func bedTaken(err error) error {
	if gRepo.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrBedTaken, err)
	}

	return err
}

func (r *repositoryImpl) Insert(ctx context.Context, booking model.Booking) error {
	return bedTaken(r.Repository.Insert(ctx, booking))
}

func (r *repositoryImpl) GetByID(ctx context.Context, id string) (model.Booking, error) {
	return r.Repository.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

// FindByRoom returns the bookings of one room ordered by bed.
func (r *repositoryImpl) FindByRoom(ctx context.Context, floor, room int) ([]model.Booking, error) {
	params := gDto.QueryParams{SortBy: model.FieldBed, SortDir: gDto.SortDirAsc}
	filter := gDto.And(
		gDto.Eq(model.TableName, model.FieldFloor, floor),
		gDto.Eq(model.TableName, model.FieldRoom, room),
	)

	return r.Repository.GetAll(ctx, params, filter)
}

// FindOccupant returns the booking holding the bed, ignoring excludeID when
// set. A free bed yields gRepo.ErrNotFound.
func (r *repositoryImpl) FindOccupant(ctx context.Context, floor, room, bed int, excludeID string) (model.Booking, error) {
	filters := []any{
		gDto.Eq(model.TableName, model.FieldFloor, floor),
		gDto.Eq(model.TableName, model.FieldRoom, room),
		gDto.Eq(model.TableName, model.FieldBed, bed),
	}

	if excludeID != "" {
		filters = append(filters, gDto.NotEq(model.TableName, model.FieldID, "exclude_id", excludeID))
	}

	return r.Repository.Get(ctx, gDto.And(filters...))
}

// UpdatePlacement moves the booking in a single statement.
func (r *repositoryImpl) UpdatePlacement(ctx context.Context, id string, floor, room, bed int, actor string) error {
	fields := map[string]any{
		model.FieldFloor:         floor,
		model.FieldRoom:          room,
		model.FieldBed:           bed,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor,
	}

	return bedTaken(r.Repository.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)))
}
