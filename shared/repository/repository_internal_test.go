package repository

import (
	"errors"
	"fmt"
	"hostel/infras/otel/mocks"
	"hostel/shared/dto"
	"hostel/shared/model"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type bed struct {
	ID       string `db:"id"`
	Floor    int    `db:"floor"`
	Room     int    `db:"room"`
	UserName string `db:"user_name" table:"users" column:"name"`
	Derived  string `db:"-"`
	model.Metadata
}

func TestGetColumns(t *testing.T) {
	repo := NewRepository[bed]("bed", "bookings", "id", nil, mocks.NewOtel())

	assert.Equal(t, []string{"id", "floor", "room", "created_at", "modified_at", "created_by", "modified_by"}, repo.InsertColumns)
	assert.Equal(t,
		"bookings.id, bookings.floor, bookings.room, users.name AS user_name, bookings.created_at, bookings.modified_at, bookings.created_by, bookings.modified_by",
		repo.getSelectQuery(),
	)
	assert.Equal(t, "bookings.floor, bookings.room", repo.getSelectQuery("floor", "room"))
}

func TestBuildWhereClause(t *testing.T) {
	repo := NewRepository[bed]("bed", "bookings", "id", nil, mocks.NewOtel())

	where, args := repo.BuildWhereClause(dto.FilterGroup{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = repo.BuildWhereClause(dto.And(dto.Eq("bookings", "floor", 1)))
	assert.Equal(t, " WHERE (bookings.floor = :floor) ", where)
	assert.Equal(t, map[string]any{"floor": 1}, args)
}

func TestOrdering(t *testing.T) {
	repo := NewRepository[bed]("bed", "bookings", "id", nil, mocks.NewOtel())

	assert.Empty(t, repo.ordering(dto.QueryParams{}))
	assert.Equal(t, "ORDER BY bookings.created_at DESC", repo.ordering(dto.QueryParams{SortBy: "created_at", SortDir: "DESC"}))
	assert.Equal(t, "ORDER BY users.name ASC", repo.ordering(dto.QueryParams{SortBy: "users.name", SortDir: "ASC"}))
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "bookings_floor_room_bed_key"}
	foreignKey := &pq.Error{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.True(t, IsUniqueViolation(fmt.Errorf("update: %w", ErrUniqueViolation)))
	assert.False(t, IsUniqueViolation(foreignKey))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestWriteError(t *testing.T) {
	repo := NewRepository[bed]("bed", "bookings", "id", nil, mocks.NewOtel())

	err := repo.writeError("insert", &pq.Error{Code: "23505"})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	err = repo.writeError("insert", errors.New("boom"))
	assert.NotErrorIs(t, err, ErrUniqueViolation)
}
