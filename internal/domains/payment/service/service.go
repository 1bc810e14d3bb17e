package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Payment=MockPaymentService

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"hostel/config"
	"hostel/infras/kafka"
	"hostel/infras/otel"
	bookingRepo "hostel/internal/domains/booking/repository"
	"hostel/internal/domains/payment/model"
	"hostel/internal/domains/payment/model/dto"
	"hostel/internal/domains/payment/repository"
	userModel "hostel/internal/domains/user/model"
	userRepo "hostel/internal/domains/user/repository"
	"hostel/shared"
	"hostel/shared/cache"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	"hostel/shared/failure"
	"hostel/shared/metrics"
	gRepo "hostel/shared/repository"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	cacheUserPayments = "payment:user"
	cacheAllPayments  = "payment:all"

	msgInvalidCode = "Invalid admin code"

	otelAmountAttribute = "hostel.payment.amount"
	otelUserIDAttribute = "hostel.user.id"
)

var (
	errPaymentNotFound = failure.NotFound("Payment not found")
	errUserNotFound    = failure.BadRequestFromString("User not found")
	errBookingNotFound = failure.BadRequestFromString("Booking not found")
)

type Payment interface {
	CreateManual(ctx context.Context, req dto.ManualPaymentRequest) (dto.PaymentResponse, error)
	History(ctx context.Context, userID string) ([]dto.PaymentDetailResponse, error)
	Receipt(ctx context.Context, id string) (dto.Document, error)
	Delete(ctx context.Context, id string) error
	Grouped(ctx context.Context) ([]dto.PaymentGroup, error)
	Export(ctx context.Context) (dto.Document, error)
}

type serviceImpl struct {
	repo        repository.Payment
	bookingRepo bookingRepo.Booking
	userRepo    userRepo.User
	publisher   kafka.Publisher
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	repo repository.Payment,
	bookingRepo bookingRepo.Booking,
	userRepo userRepo.User,
	publisher kafka.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

// CreateManual records a payment entered by staff. The code is checked before
// anything is read, so a wrong code never leaves a record behind.
func (s *serviceImpl) CreateManual(ctx context.Context, req dto.ManualPaymentRequest) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.CreateManual")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		otelAmountAttribute: req.Amount,
		otelUserIDAttribute: req.UserID,
	})

	if !s.validCode(req.Code) {
		metrics.IncPaymentCodeRejected()

		return res, failure.BadRequestFromString(msgInvalidCode)
	}

	var user *userModel.User

	if userID := strings.TrimSpace(req.UserID); userID != constant.Empty {
		found, err := s.userRepo.GetByID(ctx, userID)
		if errors.Is(err, gRepo.ErrNotFound) {
			return res, errUserNotFound
		}

		if err != nil {
			log.Error().Err(err).Str("userId", userID).Msg("failed to get payment user")

			return res, fmt.Errorf("failed to get payment user: %w", err)
		}

		user = &found
	}

	placement := req.RequestedPlacement()

	if bookingID := strings.TrimSpace(req.BookingID); bookingID != constant.Empty {
		booking, err := s.bookingRepo.GetByID(ctx, bookingID)
		if errors.Is(err, gRepo.ErrNotFound) {
			return res, errBookingNotFound
		}

		if err != nil {
			log.Error().Err(err).Str("bookingId", bookingID).Msg("failed to get payment booking")

			return res, fmt.Errorf("failed to get payment booking: %w", err)
		}

		placement = dto.PlacementFromBooking(booking.Floor, booking.Room, booking.Bed)
	}

	name, phone := payer(req, user)
	actor := shared.Actor(ctx)
	payment := req.ToModel(actor, name, phone, placement)

	if err = s.repo.Insert(ctx, payment); err != nil {
		log.Error().Err(err).Msg("failed to create payment")

		return res, fmt.Errorf("failed to create payment: %w", err)
	}

	s.invalidate(ctx)
	s.publish(ctx, payment, actor)
	metrics.IncPaymentRecorded()

	res.FromModel(payment)

	return res, nil
}

// History lists a user's payments newest first.
func (s *serviceImpl) History(ctx context.Context, userID string) (res []dto.PaymentDetailResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.History")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelUserIDAttribute, userID)

	version, cached := shared.CacheVersion(ctx, s.cache, constant.CacheVersionPayments)
	cacheKey := shared.BuildCacheKey(cacheUserPayments, version, userID)

	if cached {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for user payments")

			return res, nil
		}
	}

	details, err := s.repo.FindDetails(ctx, gDto.And(gDto.Eq(model.TableName, model.FieldUserID, userID)))
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to get user payments")

		return nil, fmt.Errorf("failed to get user payments: %w", err)
	}

	res = make([]dto.PaymentDetailResponse, len(details))
	for i, detail := range details {
		res[i].FromModel(detail)
	}

	if cached {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

func (s *serviceImpl) Receipt(ctx context.Context, id string) (res dto.Document, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Receipt")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	detail, err := s.repo.GetDetail(ctx, id)
	if errors.Is(err, gRepo.ErrNotFound) {
		return res, errPaymentNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get payment")

		return res, fmt.Errorf("failed to get payment: %w", err)
	}

	content, err := renderReceipt(detail)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to render receipt")

		return res, fmt.Errorf("failed to render receipt: %w", err)
	}

	return dto.Document{
		FileName:    "receipt-" + detail.ID + ".pdf",
		ContentType: constant.ContentTypePDF,
		Content:     content,
	}, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.repo.GetDetail(ctx, id)
	if errors.Is(err, gRepo.ErrNotFound) {
		return errPaymentNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get payment")

		return fmt.Errorf("failed to get payment: %w", err)
	}

	err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if errors.Is(err, gRepo.ErrNotFound) {
		return errPaymentNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete payment")

		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

// Grouped buckets every payment by user, groups in order of their newest
// payment.
func (s *serviceImpl) Grouped(ctx context.Context) (res []dto.PaymentGroup, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Grouped")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	version, cached := shared.CacheVersion(ctx, s.cache, constant.CacheVersionPayments)
	cacheKey := shared.BuildCacheKey(cacheAllPayments, version)

	if cached {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for grouped payments")

			return res, nil
		}
	}

	details, err := s.repo.FindDetails(ctx, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get payments")

		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	res = dto.GroupByUser(details)

	if cached {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

// Export renders the grouped listing as a workbook.
func (s *serviceImpl) Export(ctx context.Context) (res dto.Document, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Export")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	groups, err := s.Grouped(ctx)
	if err != nil {
		return res, err
	}

	content, err := renderWorkbook(groups)
	if err != nil {
		log.Error().Err(err).Msg("failed to render payments workbook")

		return res, fmt.Errorf("failed to render payments workbook: %w", err)
	}

	return dto.Document{
		FileName:    exportFileName(),
		ContentType: constant.ContentTypeXLSX,
		Content:     content,
	}, nil
}

// validCode compares trimmed and case-folded, in constant time.
func (s *serviceImpl) validCode(code string) bool {
	given := strings.ToUpper(strings.TrimSpace(code))
	want := strings.ToUpper(strings.TrimSpace(s.cfg.App.PaymentCode))

	if given == constant.Empty || want == constant.Empty {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

// payer picks the first non-empty of the request, the user and a placeholder.
func payer(req dto.ManualPaymentRequest, user *userModel.User) (name, phone string) {
	name, phone = strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone)

	if name == constant.Empty && user != nil {
		name = user.DisplayName()
	}

	if phone == constant.Empty && user != nil {
		phone = user.PhoneNumber()
	}

	if name == constant.Empty {
		name = constant.Unknown
	}

	if phone == constant.Empty {
		phone = constant.NotAvailable
	}

	return name, phone
}

func (s *serviceImpl) save(ctx context.Context, cacheKey string, value any) {
	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, value, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to save payments to cache")
	}
}

// invalidate retires every cached payment view. Booking writes bump the same
// generation since history back-fills room and bed from the booking.
func (s *serviceImpl) invalidate(ctx context.Context) {
	shared.BumpCacheVersions(context.WithoutCancel(ctx), s.cache, constant.CacheVersionPayments)
}

func (s *serviceImpl) publish(ctx context.Context, payment model.Payment, actor string) {
	s.publisher.PublishAsync(ctx, kafka.EventPaymentRecorded, payment.ID, dto.NewPaymentEvent(payment, actor))
}
