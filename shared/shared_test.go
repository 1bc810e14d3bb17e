package shared_test

import (
	"context"
	"errors"
	"hostel/shared"
	cacheMocks "hostel/shared/cache/mocks"
	"hostel/shared/constant"
	"hostel/shared/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:room-status:2:3", shared.BuildCacheKey("booking:room-status", 2, 3))
	assert.Equal(t, "payment:all", shared.BuildCacheKey("payment:all"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	floorTwo := dto.And(dto.Eq("bookings", "floor", 2))
	floorThree := dto.And(dto.Eq("bookings", "floor", 3))

	first := shared.BuildCacheKeyWithQuery("booking:gets", params, floorTwo)
	again := shared.BuildCacheKeyWithQuery("booking:gets", params, floorTwo)
	other := shared.BuildCacheKeyWithQuery("booking:gets", params, floorThree)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
	assert.Contains(t, first, "booking:gets:")
}

func TestCacheVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Version(gomock.Any(), "version:room:1:2").Return(int64(4), nil)

	version, ok := shared.CacheVersion(context.Background(), mockCache, shared.RoomVersionKey(1, 2))
	assert.True(t, ok)
	assert.Equal(t, int64(4), version)

	mockCache.EXPECT().Version(gomock.Any(), constant.CacheVersionBookings).Return(int64(0), errors.New("redis down"))

	_, ok = shared.CacheVersion(context.Background(), mockCache, constant.CacheVersionBookings)
	assert.False(t, ok)
}

func TestBumpCacheVersions(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	gomock.InOrder(
		mockCache.EXPECT().Bump(gomock.Any(), constant.CacheVersionBookings).Return(errors.New("redis down")),
		mockCache.EXPECT().Bump(gomock.Any(), constant.CacheVersionPayments).Return(nil),
	)

	shared.BumpCacheVersions(context.Background(), mockCache, constant.CacheVersionBookings, constant.CacheVersionPayments)
}

func TestActor(t *testing.T) {
	assert.Equal(t, constant.ActorGuest, shared.Actor(context.Background()))

	ctx := context.WithValue(context.Background(), constant.ContextKeyUsername, "warden")
	assert.Equal(t, "warden", shared.Actor(ctx))

	_, ok := shared.UserID(ctx)
	assert.False(t, ok)

	id, ok := shared.UserID(context.WithValue(ctx, constant.ContextKeyUserID, "u-1"))
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)
}

func TestConvertStringToInt(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"3", 3, true},
		{" 12 ", 12, true},
		{"", 0, false},
		{"two", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := shared.ConvertStringToInt(tt.input)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	assert.Equal(t, 1, shared.CalculateTotalPage(0, 10))
	assert.Equal(t, 1, shared.CalculateTotalPage(100, 0))
	assert.Equal(t, 10, shared.CalculateTotalPage(100, 10))
	assert.Equal(t, 11, shared.CalculateTotalPage(101, 10))
}

func TestTransformFields(t *testing.T) {
	type placement struct {
		Floor   int    `db:"floor"`
		Room    int    `db:"room"`
		Bed     int    `db:"bed"`
		Note    string `db:"note"`
		Skipped string `db:"-"`
		NoTag   string
	}

	result := shared.TransformFields(placement{Floor: 2, Room: 3, Skipped: "x", NoTag: "y"}, "desk")

	assert.Equal(t, 2, result["floor"])
	assert.Equal(t, 3, result["room"])
	assert.NotContains(t, result, "bed")
	assert.NotContains(t, result, "note")
	assert.NotContains(t, result, "-")
	assert.Equal(t, "desk", result[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])
}

func TestFilterByID(t *testing.T) {
	where, args := func() (string, map[string]any) {
		group := shared.FilterByID("b-1", "id", "bookings")

		return group.GetWhereClause()
	}()

	assert.Equal(t, "(bookings.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "b-1"}, args)
}
