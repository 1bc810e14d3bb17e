package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"
	"hostel/config"
	"hostel/infras/kafka"
	"hostel/infras/otel"
	"hostel/infras/storage"
	"hostel/internal/domains/booking/model"
	"hostel/internal/domains/booking/model/dto"
	"hostel/internal/domains/booking/repository"
	"hostel/internal/domains/inventory"
	userRepo "hostel/internal/domains/user/repository"
	"hostel/shared"
	"hostel/shared/cache"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	"hostel/shared/failure"
	"hostel/shared/metrics"
	gRepo "hostel/shared/repository"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheRoomStatus    = "booking:room-status"

	uploadDirectory = "bookings"

	msgInvalidBedForRoom = "Invalid bed for this room sharing type"
	msgInvalidBed        = "Invalid bed number"
	msgBedBookedBy       = "Bed already booked by: "
)

var errBookingNotFound = failure.NotFound("Booking not found")

const otelBookingIDAttribute = "hostel.booking.id"

type Booking interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	RoomStatus(ctx context.Context, floor, room int) (dto.RoomStatusResponse, error)
	Create(ctx context.Context, req dto.CreateBookingRequest, uploads []dto.Upload) (dto.BookingResponse, error)
	Shift(ctx context.Context, req dto.ShiftRequest) (dto.ShiftResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo      repository.Booking
	userRepo  userRepo.User
	topology  inventory.Topology
	storage   storage.Storage
	publisher kafka.Publisher
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	userRepo userRepo.User,
	topology inventory.Topology,
	storage storage.Storage,
	publisher kafka.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		userRepo:  userRepo,
		topology:  topology,
		storage:   storage,
		publisher: publisher,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(constant.DefaultValueSortBy, model.FieldName, model.FieldFloor, model.FieldRoom,
		model.FieldBed, model.FieldJoinDate)

	version, cached := shared.CacheVersion(ctx, s.cache, constant.CacheVersionBookings)
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllBooking, version), params, filter)

	if cached {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

			return res, nil
		}
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	if cached {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	version, cached := shared.CacheVersion(ctx, s.cache, constant.CacheVersionBookings)
	cacheKey := shared.BuildCacheKey(cacheGetBooking, version, id)

	if cached {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

			return res, nil
		}
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	if cached {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

// RoomStatus partitions the beds of one room into booked and available.
func (s *serviceImpl) RoomStatus(ctx context.Context, floor, room int) (res dto.RoomStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.RoomStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetPlacement(floor, room, 0)

	capacity, err := s.topology.Capacity(floor, room)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	// The generation is read before the room is loaded, so a write landing in
	// between retires the key this read saves under.
	version, cached := shared.CacheVersion(ctx, s.cache, shared.RoomVersionKey(floor, room))
	cacheKey := shared.BuildCacheKey(cacheRoomStatus, floor, room, version)

	if cached {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for room status")

			return res, nil
		}
	}

	bookings, err := s.repo.FindByRoom(ctx, floor, room)
	if err != nil {
		log.Error().Err(err).Int("floor", floor).Int("room", room).Msg("failed to get room bookings")

		return res, fmt.Errorf("failed to get room bookings: %w", err)
	}

	res.FromBookings(floor, room, capacity, bookings)

	if cached {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

// Create checks the bed against the topology and the current occupant, stores
// the uploads and inserts the booking. The unique (floor, room, bed) index
// decides between concurrent creates; the loser gets the winner's name back.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest, uploads []dto.Upload) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetPlacement(req.Floor, req.Room, req.Bed)

	if err = s.topology.ValidateBed(req.Floor, req.Room, req.Bed); err != nil {
		return res, placementFailure(err, msgInvalidBedForRoom)
	}

	if req.UserID != constant.Empty {
		exists, err := s.userRepo.Exists(ctx, req.UserID)
		if err != nil {
			log.Error().Err(err).Msg("failed to check booking user")

			return res, fmt.Errorf("failed to check booking user: %w", err)
		}

		if !exists {
			return res, failure.BadRequestFromString("User not found")
		}
	}

	occupant, err := s.repo.FindOccupant(ctx, req.Floor, req.Room, req.Bed, constant.Empty)
	if err == nil {
		metrics.IncBookingConflict(metrics.OperationCreate)

		return res, failure.BadRequestFromString(msgBedBookedBy + occupant.Name)
	}

	if !errors.Is(err, gRepo.ErrNotFound) {
		log.Error().Err(err).Msg("failed to check bed occupant")

		return res, fmt.Errorf("failed to check bed occupant: %w", err)
	}

	refs, err := s.store(ctx, uploads)
	if err != nil {
		return res, err
	}

	actor := shared.Actor(ctx)
	booking := req.ToModel(actor, refs[constant.FormFilePhoto], refs[constant.FormFileAadhar])

	if err = s.repo.Insert(ctx, booking); err != nil {
		s.discard(ctx, refs)

		if errors.Is(err, repository.ErrBedTaken) {
			metrics.IncBookingConflict(metrics.OperationCreate)

			return res, failure.BadRequestFromString(s.occupiedMessage(ctx, req.Floor, req.Room, req.Bed, booking.ID))
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.invalidate(ctx, [2]int{booking.Floor, booking.Room})
	s.publish(ctx, kafka.EventBookingCreated, booking, actor)
	metrics.IncBookingCreated()

	res.FromModel(booking)

	return res, nil
}

// Shift moves a booking. Refusals are reported in the response rather than
// as errors; only a missing booking or an unknown room is an error.
func (s *serviceImpl) Shift(ctx context.Context, req dto.ShiftRequest) (res dto.ShiftResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Shift")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelBookingIDAttribute, req.BookingID)
	scope.SetPlacement(req.ToFloor, req.ToRoom, req.ToBed)

	booking, err := s.find(ctx, req.BookingID)
	if err != nil {
		return res, err
	}

	if err = s.topology.ValidateBed(req.ToFloor, req.ToRoom, req.ToBed); err != nil {
		if errors.Is(err, inventory.ErrInvalidBed) {
			return dto.ShiftResponse{Message: msgInvalidBed}, nil
		}

		return res, failure.BadRequest(err)
	}

	occupant, err := s.repo.FindOccupant(ctx, req.ToFloor, req.ToRoom, req.ToBed, booking.ID)
	if err == nil {
		metrics.IncBookingConflict(metrics.OperationShift)

		return dto.ShiftResponse{Message: msgBedBookedBy + occupant.Name}, nil
	}

	if !errors.Is(err, gRepo.ErrNotFound) {
		log.Error().Err(err).Msg("failed to check bed occupant")

		return res, fmt.Errorf("failed to check bed occupant: %w", err)
	}

	if booking.Floor == req.ToFloor && booking.Room == req.ToRoom && booking.Bed == req.ToBed {
		return dto.ShiftResponse{Success: true}, nil
	}

	actor := shared.Actor(ctx)

	err = s.repo.UpdatePlacement(ctx, booking.ID, req.ToFloor, req.ToRoom, req.ToBed, actor)
	switch {
	case errors.Is(err, repository.ErrBedTaken):
		metrics.IncBookingConflict(metrics.OperationShift)

		return dto.ShiftResponse{Message: s.occupiedMessage(ctx, req.ToFloor, req.ToRoom, req.ToBed, booking.ID)}, nil
	case errors.Is(err, gRepo.ErrNotFound):
		return res, errBookingNotFound
	case err != nil:
		log.Error().Err(err).Str("id", booking.ID).Msg("failed to shift booking")

		return res, fmt.Errorf("failed to shift booking: %w", err)
	}

	from := [2]int{booking.Floor, booking.Room}
	booking.Floor, booking.Room, booking.Bed = req.ToFloor, req.ToRoom, req.ToBed

	s.invalidate(ctx, from, [2]int{booking.Floor, booking.Room})
	s.publish(ctx, kafka.EventBookingShifted, booking, actor)
	metrics.IncBookingShifted()

	return dto.ShiftResponse{Success: true}, nil
}

// Delete releases the bed. Payments keep their snapshot and the uploaded
// files stay where they are.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelBookingIDAttribute, id)

	booking, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	scope.SetPlacement(booking.Floor, booking.Room, booking.Bed)

	err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if errors.Is(err, gRepo.ErrNotFound) {
		return errBookingNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if files := booking.Files(); len(files) > 0 {
		log.Info().Str("id", id).Strs("files", files).Msg("booking deleted, uploaded files left orphaned")
	}

	s.invalidate(ctx, [2]int{booking.Floor, booking.Room})
	s.publish(ctx, kafka.EventBookingDeleted, booking, shared.Actor(ctx))
	metrics.IncBookingDeleted()

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gRepo.ErrNotFound) {
		return booking, errBookingNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// occupiedMessage names whoever won a bed after the write was rejected.
func (s *serviceImpl) occupiedMessage(ctx context.Context, floor, room, bed int, excludeID string) string {
	occupant, err := s.repo.FindOccupant(ctx, floor, room, bed, excludeID)
	if err != nil {
		log.Warn().Err(err).Int("floor", floor).Int("room", room).Int("bed", bed).Msg("failed to load occupant after conflict")

		return msgBedBookedBy + constant.Unknown
	}

	return msgBedBookedBy + occupant.Name
}

// store saves the uploads and returns their references keyed by form field.
// When one fails the ones already stored are removed again.
func (s *serviceImpl) store(ctx context.Context, uploads []dto.Upload) (map[string]string, error) {
	refs := make(map[string]string, len(uploads))

	for _, upload := range uploads {
		ref, err := s.storage.Save(ctx, uploadDirectory, upload.StoredName(), upload.ContentType, upload.Content)
		if err != nil {
			log.Error().Err(err).Str("field", upload.Field).Msg("failed to store upload")
			s.discard(ctx, refs)

			return nil, fmt.Errorf("failed to store %s: %w", upload.Field, err)
		}

		refs[upload.Field] = ref
	}

	return refs, nil
}

func (s *serviceImpl) discard(ctx context.Context, refs map[string]string) {
	c := context.WithoutCancel(ctx)

	for field, ref := range refs {
		if err := s.storage.Remove(c, ref); err != nil {
			log.Error().Err(err).Str("field", field).Str("ref", ref).Msg("failed to remove upload")
		}
	}
}

func (s *serviceImpl) save(ctx context.Context, cacheKey string, value any) {
	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, value, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to save bookings to cache")
	}
}

// invalidate bumps the generations behind every cached view of the touched
// rooms, the booking listings and the payments that back-fill from bookings.
// It runs after the write, before returning.
func (s *serviceImpl) invalidate(ctx context.Context, rooms ...[2]int) {
	keys := make([]string, 0, len(rooms)+2)

	for _, room := range rooms {
		keys = append(keys, shared.RoomVersionKey(room[0], room[1]))
	}

	keys = append(keys, constant.CacheVersionBookings, constant.CacheVersionPayments)

	shared.BumpCacheVersions(context.WithoutCancel(ctx), s.cache, keys...)
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, booking model.Booking, actor string) {
	s.publisher.PublishAsync(ctx, eventType, booking.ID, dto.NewBookingEvent(booking, actor))
}

func placementFailure(err error, invalidBedMessage string) error {
	if errors.Is(err, inventory.ErrInvalidBed) {
		return failure.BadRequestFromString(invalidBedMessage)
	}

	return failure.BadRequest(err)
}
