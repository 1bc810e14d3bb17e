package payment

import (
	"hostel/infras/otel"
	"hostel/internal/domains/payment/model/dto"
	"hostel/internal/domains/payment/service"
	"hostel/shared/constant"
	"hostel/shared/failure"
	"hostel/shared/validator"
	"hostel/transport/http/middleware"
	"hostel/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var (
	errPaymentNotFound = failure.NotFound("Payment not found")
	errUserNotFound    = failure.NotFound("User not found")
)

// Throttle wraps the endpoint that checks the admin payment code.
type Throttle func(http.Handler) http.Handler

type Handler struct {
	service  service.Payment
	throttle Throttle
	otel     otel.Otel
}

func New(service service.Payment, throttle Throttle, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		throttle: throttle,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.With(handler.throttle).Post("/manual", handler.CreateManualPayment)
		routerGroup.Get("/all", handler.GetGroupedPayments)
		routerGroup.Get("/all/export", handler.ExportPayments)
		routerGroup.With(middleware.UUIDParam(constant.RequestParamID, errUserNotFound)).
			Get("/user/{id}", handler.GetUserPayments)
		routerGroup.Group(func(byID chi.Router) {
			byID.Use(middleware.UUIDParam(constant.RequestParamID, errPaymentNotFound))
			byID.Get("/{id}/receipt", handler.GetReceipt)
			byID.Delete("/{id}", handler.DeletePayment)
		})
	})
}

// CreateManualPayment records a cash or UPI payment entered by staff.
// @Summary Record a manual payment
// @Description Requires the admin payment code. Room and bed come from the booking when one is linked.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.ManualPaymentRequest true "Manual payment"
// @Success 201 {object} response.Data[dto.PaymentResponse] "Payment recorded"
// @Failure 400 {object} response.Error
// @Failure 429 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /payments/manual [post]
func (handler *Handler) CreateManualPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateManualPayment")
	defer scope.End()

	req := dto.ManualPaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	payment, err := handler.service.CreateManual(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to record manual payment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment recorded")

	response.WithJSON(w, http.StatusCreated, payment)
}

// GetUserPayments lists the payment history of one user.
// @Summary Payment history of a user
// @Tags Payment
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Data[[]dto.PaymentDetailResponse] "Payments, newest first"
// @Failure 500 {object} response.Error
// @Router /payments/user/{id} [get]
func (handler *Handler) GetUserPayments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUserPayments")
	defer scope.End()

	userID := chi.URLParam(r, constant.RequestParamID)

	payments, err := handler.service.History(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("userId", userID).Msg("failed to get payment history")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, payments)
}

// GetReceipt streams the PDF receipt of a payment.
// @Summary Download a payment receipt
// @Tags Payment
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {file} file "receipt-<id>.pdf"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /payments/{id}/receipt [get]
func (handler *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReceipt")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	receipt, err := handler.service.Receipt(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to generate receipt")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, receipt.FileName, receipt.ContentType, receipt.Content)
}

// DeletePayment removes a payment.
// @Summary Delete a payment
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Message "Payment deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /payments/{id} [delete]
func (handler *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePayment")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to delete payment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment deleted")

	response.WithMessage(w, http.StatusOK, "Payment deleted successfully")
}

// GetGroupedPayments lists every payment grouped by user.
// @Summary Payments grouped by user
// @Description Groups keep the order in which each user first appears; payments are newest first.
// @Tags Payment
// @Produce json
// @Success 200 {object} response.Data[[]dto.PaymentGroup] "Payment groups with totals"
// @Failure 500 {object} response.Error
// @Router /payments/all [get]
func (handler *Handler) GetGroupedPayments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGroupedPayments")
	defer scope.End()

	groups, err := handler.service.Grouped(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get grouped payments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, groups)
}

// ExportPayments downloads the grouped payments as a workbook.
// @Summary Export payments
// @Tags Payment
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "payments_<date>.xlsx"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /payments/all/export [get]
// @Security BearerAuth
func (handler *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportPayments")
	defer scope.End()

	workbook, err := handler.service.Export(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export payments")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, workbook.FileName, workbook.ContentType, workbook.Content)
}
