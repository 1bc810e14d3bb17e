package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"hostel/infras/otel"
	"hostel/infras/postgres"
	"hostel/internal/domains/payment/model"
	"hostel/shared"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	gRepo "hostel/shared/repository"
)

type Payment interface {
	Insert(ctx context.Context, model model.Payment) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	GetDetail(ctx context.Context, id string) (model.PaymentDetail, error)
	FindDetails(ctx context.Context, filter gDto.FilterGroup) ([]model.PaymentDetail, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Payment]
	details gRepo.Repository[model.PaymentDetail]
}

func New(db *postgres.Connection, otel otel.Otel) Payment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Payment](model.EntityName, model.TableName, model.FieldID, db, otel),
		details:    gRepo.NewRepository[model.PaymentDetail](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func (r *repositoryImpl) GetDetail(ctx context.Context, id string) (model.PaymentDetail, error) {
	return r.details.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

// FindDetails returns the matching payments newest first.
func (r *repositoryImpl) FindDetails(ctx context.Context, filter gDto.FilterGroup) ([]model.PaymentDetail, error) {
	params := gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirDesc}

	return r.details.GetAll(ctx, params, filter)
}
