package service_test

import (
	"context"
	"errors"
	"fmt"
	"hostel/config"
	kafkaMocks "hostel/infras/kafka/mocks"
	otelMocks "hostel/infras/otel/mocks"
	storageMocks "hostel/infras/storage/mocks"
	"hostel/internal/domains/booking/mocks"
	"hostel/internal/domains/booking/model"
	"hostel/internal/domains/booking/model/dto"
	"hostel/internal/domains/booking/repository"
	"hostel/internal/domains/booking/service"
	"hostel/internal/domains/inventory"
	userMocks "hostel/internal/domains/user/mocks"
	cacheMocks "hostel/shared/cache/mocks"
	"hostel/shared/constant"
	"hostel/shared/failure"
	gRepo "hostel/shared/repository"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type deps struct {
	repo     *mocks.MockBooking
	users    *userMocks.MockUser
	storage  *storageMocks.MockStorage
	cache    *cacheMocks.MockRedisCache
	producer *kafkaMocks.MockPublisher
}

func setup(t *testing.T) (service.Booking, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		repo:     mocks.NewMockBooking(ctrl),
		users:    userMocks.NewMockUser(ctrl),
		storage:  storageMocks.NewMockStorage(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		producer: kafkaMocks.NewMockPublisher(ctrl),
	}

	d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).AnyTimes()
	d.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.cache.EXPECT().Version(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()
	d.producer.EXPECT().PublishAsync(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	svc := service.New(d.repo, d.users, inventory.Default(), d.storage, d.producer, &config.Config{}, d.cache, otelMocks.NewOtel())

	return svc, d
}

func expectBumps(d deps, keys ...string) {
	calls := make([]any, len(keys))
	for i, key := range keys {
		calls[i] = d.cache.EXPECT().Bump(gomock.Any(), key).Return(nil)
	}

	gomock.InOrder(calls...)
}

func validRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		Name:     "Ravi Kumar",
		Phone:    "9876543210",
		JoinDate: "2024-07-01",
		Floor:    2,
		Room:     3,
		Bed:      1,
	}
}

func TestBookingService_Create(t *testing.T) {
	photo := dto.Upload{Field: constant.FormFilePhoto, FileName: "my photo.jpg", ContentType: "image/jpeg", Content: []byte("jpg")}

	tests := []struct {
		name      string
		req       func() dto.CreateBookingRequest
		uploads   []dto.Upload
		setupMock func(d deps)
		wantCode  int
		wantMsg   string
	}{
		{
			name: "bed beyond room capacity",
			req: func() dto.CreateBookingRequest {
				req := validRequest()
				req.Room, req.Bed = 1, 3

				return req
			},
			setupMock: func(deps) {},
			wantCode:  http.StatusBadRequest,
			wantMsg:   "Invalid bed for this room sharing type",
		},
		{
			name: "unknown floor",
			req: func() dto.CreateBookingRequest {
				req := validRequest()
				req.Floor = 9

				return req
			},
			setupMock: func(deps) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown user",
			req: func() dto.CreateBookingRequest {
				req := validRequest()
				req.UserID = "0f8fad5b-d9cb-469f-a165-70867728950e"

				return req
			},
			setupMock: func(d deps) {
				d.users.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "User not found",
		},
		{
			name: "bed already occupied",
			req:  validRequest,
			setupMock: func(d deps) {
				d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 3, 1, "").Return(model.Booking{ID: "b-1", Name: "Asha"}, nil)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Bed already booked by: Asha",
		},
		{
			name:    "lost the insert race",
			req:     validRequest,
			uploads: []dto.Upload{photo},
			setupMock: func(d deps) {
				gomock.InOrder(
					d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 3, 1, "").Return(model.Booking{}, gRepo.ErrNotFound),
					d.storage.EXPECT().Save(gomock.Any(), "bookings", gomock.Any(), "image/jpeg", []byte("jpg")).Return("/uploads/bookings/p.jpg", nil),
					d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(fmt.Errorf("insert: %w", repository.ErrBedTaken)),
				)
				d.storage.EXPECT().Remove(gomock.Any(), "/uploads/bookings/p.jpg").Return(nil)
				d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 3, 1, gomock.Any()).Return(model.Booking{Name: "Winner"}, nil)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Bed already booked by: Winner",
		},
		{
			name:    "upload failure",
			req:     validRequest,
			uploads: []dto.Upload{photo},
			setupMock: func(d deps) {
				d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 3, 1, "").Return(model.Booking{}, gRepo.ErrNotFound)
				d.storage.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:    "created",
			req:     validRequest,
			uploads: []dto.Upload{photo},
			setupMock: func(d deps) {
				d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 3, 1, "").Return(model.Booking{}, gRepo.ErrNotFound)
				d.storage.EXPECT().Save(gomock.Any(), "bookings", gomock.Any(), "image/jpeg", gomock.Any()).Return("/uploads/bookings/p.jpg", nil)
				d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, booking model.Booking) error {
						require.NotNil(t, booking.Photo)
						assert.Equal(t, "/uploads/bookings/p.jpg", *booking.Photo)
						assert.Nil(t, booking.AadharFile)
						assert.Equal(t, constant.ActorGuest, booking.CreatedBy)

						return nil
					})
				expectBumps(d, "version:room:2:3", constant.CacheVersionBookings, constant.CacheVersionPayments)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := setup(t)
			tt.setupMock(d)

			res, err := svc.Create(context.Background(), tt.req(), tt.uploads)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, err.Error())
				}

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, "203", res.RoomNumber)
			assert.Equal(t, "2024-07-01", res.JoinDate)
		})
	}
}

func TestBookingService_Shift(t *testing.T) {
	current := model.Booking{ID: "b-1", Name: "Ravi", Floor: 1, Room: 1, Bed: 1}

	tests := []struct {
		name      string
		req       dto.ShiftRequest
		setupMock func(d deps)
		want      dto.ShiftResponse
		wantCode  int
	}{
		{
			name: "missing booking",
			req:  dto.ShiftRequest{BookingID: "nope", ToFloor: 1, ToRoom: 1, ToBed: 1},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "nope").Return(model.Booking{}, gRepo.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "bed out of range",
			req:  dto.ShiftRequest{BookingID: "b-1", ToFloor: 1, ToRoom: 1, ToBed: 3},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(current, nil)
			},
			want: dto.ShiftResponse{Message: "Invalid bed number"},
		},
		{
			name: "bed zero",
			req:  dto.ShiftRequest{BookingID: "b-1", ToFloor: 1, ToRoom: 1, ToBed: 0},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(current, nil)
			},
			want: dto.ShiftResponse{Message: "Invalid bed number"},
		},
		{
			name: "unknown room",
			req:  dto.ShiftRequest{BookingID: "b-1", ToFloor: 6, ToRoom: 5, ToBed: 1},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(current, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "destination occupied",
			req:  dto.ShiftRequest{BookingID: "b-1", ToFloor: 1, ToRoom: 3, ToBed: 2},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(current, nil)
				d.repo.EXPECT().FindOccupant(gomock.Any(), 1, 3, 2, "b-1").Return(model.Booking{ID: "b-2", Name: "Meena"}, nil)
			},
			want: dto.ShiftResponse{Message: "Bed already booked by: Meena"},
		},
		{
			name: "onto own bed",
			req:  dto.ShiftRequest{BookingID: "b-1", ToFloor: 1, ToRoom: 1, ToBed: 1},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(current, nil)
				d.repo.EXPECT().FindOccupant(gomock.Any(), 1, 1, 1, "b-1").Return(model.Booking{}, gRepo.ErrNotFound)
			},
			want: dto.ShiftResponse{Success: true},
		},
		{
			name: "moved",
			req:  dto.ShiftRequest{BookingID: "b-1", ToFloor: 2, ToRoom: 4, ToBed: 3},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(current, nil)
				d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 4, 3, "b-1").Return(model.Booking{}, gRepo.ErrNotFound)
				d.repo.EXPECT().UpdatePlacement(gomock.Any(), "b-1", 2, 4, 3, constant.ActorGuest).Return(nil)
				expectBumps(d, "version:room:1:1", "version:room:2:4", constant.CacheVersionBookings, constant.CacheVersionPayments)
			},
			want: dto.ShiftResponse{Success: true},
		},
		{
			name: "lost the update race",
			req:  dto.ShiftRequest{BookingID: "b-1", ToFloor: 2, ToRoom: 4, ToBed: 3},
			setupMock: func(d deps) {
				d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(current, nil)
				d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 4, 3, "b-1").Return(model.Booking{}, gRepo.ErrNotFound)
				d.repo.EXPECT().UpdatePlacement(gomock.Any(), "b-1", 2, 4, 3, gomock.Any()).Return(repository.ErrBedTaken)
				d.repo.EXPECT().FindOccupant(gomock.Any(), 2, 4, 3, "b-1").Return(model.Booking{Name: "Kiran"}, nil)
			},
			want: dto.ShiftResponse{Message: "Bed already booked by: Kiran"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := setup(t)
			tt.setupMock(d)

			got, err := svc.Shift(context.Background(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookingService_Delete(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		svc, d := setup(t)

		d.repo.EXPECT().GetByID(gomock.Any(), "b-9").Return(model.Booking{}, gRepo.ErrNotFound)

		err := svc.Delete(context.Background(), "b-9")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("deleted", func(t *testing.T) {
		svc, d := setup(t)
		photo := "/uploads/bookings/p.jpg"

		d.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(model.Booking{ID: "b-1", Floor: 3, Room: 2, Bed: 1, Photo: &photo}, nil)
		d.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
		expectBumps(d, "version:room:3:2", constant.CacheVersionBookings, constant.CacheVersionPayments)

		assert.NoError(t, svc.Delete(context.Background(), "b-1"))
	})
}

func TestBookingService_RoomStatus(t *testing.T) {
	svc, d := setup(t)

	d.repo.EXPECT().FindByRoom(gomock.Any(), 1, 3).Return([]model.Booking{
		{ID: "b-1", Name: "Asha", Bed: 2},
	}, nil)

	got, err := svc.RoomStatus(context.Background(), 1, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalBeds)
	assert.Equal(t, "103", got.RoomNumber)
	assert.Equal(t, []inventory.Occupant{{Bed: 2, Name: "Asha"}}, got.Booked)
	assert.Equal(t, []int{1, 3}, got.Available)

	_, err = svc.RoomStatus(context.Background(), 6, 5)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}
