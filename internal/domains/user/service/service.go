package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=User=MockUserService

import (
	"context"
	"errors"
	"fmt"
	"hostel/config"
	"hostel/infras/otel"
	"hostel/internal/domains/user/model"
	"hostel/internal/domains/user/model/dto"
	"hostel/internal/domains/user/repository"
	"hostel/shared"
	"hostel/shared/cache"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	"hostel/shared/failure"
	gRepo "hostel/shared/repository"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetUser    = "user:get"
	cacheGetAllUser = "user:gets"
)

var errUserNotFound = failure.NotFound("User not found")

type User interface {
	GetAll(ctx context.Context, params gDto.QueryParams) (dto.GetUsersResponse, error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	Update(ctx context.Context, req dto.UpdateUserRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(constant.DefaultValueSortBy, model.FieldName, model.FieldUsername)

	version, cached := shared.CacheVersion(ctx, s.cache, constant.CacheVersionUsers)
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllUser, version), params, gDto.FilterGroup{})

	if cached {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for users")

			return res, nil
		}
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")

		return res, fmt.Errorf("failed to count users: %w", err)
	}

	models, err := s.repo.List(ctx, params)
	if err != nil {
		log.Error().Err(err).Msg("failed to get users")

		return res, fmt.Errorf("failed to get users: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	if cached {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	version, cached := shared.CacheVersion(ctx, s.cache, constant.CacheVersionUsers)
	cacheKey := shared.BuildCacheKey(cacheGetUser, version, id)

	if cached {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for user")

			return res, nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gRepo.ErrNotFound) {
		return res, errUserNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	res.FromModel(user)

	if cached {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateUserRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateUserRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	updatedFields := shared.TransformFields(req, shared.Actor(ctx))

	err = s.repo.Update(ctx, id, updatedFields)
	if errors.Is(err, gRepo.ErrNotFound) {
		return errUserNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update user")

		return fmt.Errorf("failed to update user: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

// Delete removes the user. Bookings and payments keep their rows with the
// user reference cleared by the schema.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = s.repo.Delete(ctx, id)
	if errors.Is(err, gRepo.ErrNotFound) {
		return errUserNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete user")

		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

func (s *serviceImpl) save(ctx context.Context, cacheKey string, value any) {
	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, value, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to save users to cache")
	}
}

// invalidate retires every cached user view. Payment listings embed user
// names, so their generation moves too.
func (s *serviceImpl) invalidate(ctx context.Context) {
	shared.BumpCacheVersions(context.WithoutCancel(ctx), s.cache, constant.CacheVersionUsers, constant.CacheVersionPayments)
}
