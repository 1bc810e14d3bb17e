package booking

import (
	"errors"
	"fmt"
	"hostel/config"
	"hostel/infras/otel"
	"hostel/infras/storage"
	"hostel/internal/domains/booking/model"
	"hostel/internal/domains/booking/model/dto"
	"hostel/internal/domains/booking/service"
	"hostel/shared/constant"
	gDto "hostel/shared/dto"
	"hostel/shared/failure"
	"hostel/shared/validator"
	"hostel/transport/http/middleware"
	"hostel/transport/http/response"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const bytesPerMB = 1 << 20

var (
	errRoomRequired    = failure.BadRequestFromString("floor and room query parameters are required")
	errBookingNotFound = failure.NotFound("Booking not found")
)

type Handler struct {
	service service.Booking
	cfg     *config.Config
	otel    otel.Otel
}

func New(service service.Booking, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		service: service,
		cfg:     cfg,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/room-status", handler.GetRoomStatus)
		routerGroup.Post("/shift", handler.ShiftBooking)
		routerGroup.Group(func(byID chi.Router) {
			byID.Use(middleware.UUIDParam(constant.RequestParamID, errBookingNotFound))
			byID.Get("/{id}", handler.GetBookingByID)
			byID.Delete("/{id}", handler.DeleteBooking)
		})
	})
}

// CreateBooking handles guest check-in.
// @Summary Create a new booking
// @Description Book a bed for a guest. Photo and ID document are optional uploads.
// @Tags Booking
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Guest name"
// @Param phone formData string true "Phone number"
// @Param altPhone formData string false "Alternate phone"
// @Param email formData string false "Email"
// @Param aadharNumber formData string false "National ID number"
// @Param joinDate formData string true "Join date (YYYY-MM-DD)"
// @Param floor formData int true "Floor"
// @Param room formData int true "Room position on the floor"
// @Param bed formData int true "Bed number"
// @Param userId formData string false "Linked user ID"
// @Param amountPaid formData number false "Amount paid"
// @Param photo formData file false "Guest photo"
// @Param aadharFile formData file false "ID document"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /bookings [post]
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(writer, failure.BadRequest(err))

		return
	}

	req, err := bookingForm(request)
	if err == nil {
		err = validator.ValidateStruct(&req)
	}

	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	uploads, err := handler.readUploads(req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read uploads")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req, uploads)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created for bed " + res.RoomNumber + "/" + strconv.Itoa(res.Bed))

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetBookings retrieves all bookings based on query parameters.
// @Summary Get all bookings
// @Description Retrieve every booking, optionally filtered by floor/room. Paged only when page or limit is given.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param floor query int false "Filter by floor"
// @Param room query int false "Filter by room"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 500 {object} response.Error
// @Router /bookings [get]
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if floor, err := strconv.Atoi(r.URL.Query().Get(constant.RequestParamFloor)); err == nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Eq(model.TableName, model.FieldFloor, floor))
	}

	if room, err := strconv.Atoi(r.URL.Query().Get(constant.RequestParamRoom)); err == nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Eq(model.TableName, model.FieldRoom, room))
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetRoomStatus reports the booked and available beds of one room.
// @Summary Room status
// @Description Capacity of a room with its booked beds (and occupants) and available beds.
// @Tags Booking
// @Produce json
// @Param floor query int true "Floor"
// @Param room query int true "Room position on the floor"
// @Success 200 {object} response.Data[dto.RoomStatusResponse] "Room status"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /bookings/room-status [get]
func (handler *Handler) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomStatus")
	defer scope.End()

	floor, floorErr := strconv.Atoi(r.URL.Query().Get(constant.RequestParamFloor))
	room, roomErr := strconv.Atoi(r.URL.Query().Get(constant.RequestParamRoom))

	if floorErr != nil || roomErr != nil {
		scope.TraceError(errRoomRequired)
		response.WithError(w, errRoomRequired)

		return
	}

	status, err := handler.service.RoomStatus(ctx, floor, room)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int("floor", floor).Int("room", room).Msg("failed to get room status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, status)
}

// ShiftBooking moves a booking to another bed.
// @Summary Shift a booking
// @Description Move a booking to another floor/room/bed. A refused move answers 200 with success false and the reason.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.ShiftRequest true "Shift Request"
// @Success 200 {object} response.Message "Shift outcome"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /bookings/shift [post]
func (handler *Handler) ShiftBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ShiftBooking")
	defer scope.End()

	req := dto.ShiftRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Shift(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", req.BookingID).Msg("failed to shift booking")

		response.WithError(w, err)

		return
	}

	if res.Success && res.Message == constant.Empty {
		res.Message = "Booking shifted successfully"
	}

	response.WithOutcome(w, res.Success, res.Message)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// DeleteBooking checks a guest out and frees the bed.
// @Summary Delete a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Booking deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /bookings/{id} [delete]
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to delete booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking deleted")

	response.WithMessage(w, http.StatusOK, "Booking deleted successfully")
}

// bookingForm reads the guest fields and file headers of a create request.
func bookingForm(r *http.Request) (dto.CreateBookingRequest, error) {
	value := func(key string) string { return strings.TrimSpace(r.FormValue(key)) }

	req := dto.CreateBookingRequest{
		Name:         value("name"),
		Phone:        value("phone"),
		AltPhone:     value("altPhone"),
		Email:        value("email"),
		AadharNumber: value("aadharNumber"),
		JoinDate:     value("joinDate"),
		UserID:       value("userId"),
	}

	numbers := []struct {
		key    string
		target *int
	}{{"floor", &req.Floor}, {"room", &req.Room}, {"bed", &req.Bed}}

	for _, number := range numbers {
		key, raw := number.key, value(number.key)
		if raw == constant.Empty {
			continue
		}

		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return req, failure.BadRequestFromString(key + " must be a number")
		}

		*number.target = parsed
	}

	if raw := value("amountPaid"); raw != constant.Empty {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, failure.BadRequestFromString("amountPaid must be a number")
		}

		req.AmountPaid = amount
	}

	req.Photo = formFile(r.MultipartForm, constant.FormFilePhoto)
	req.AadharFile = formFile(r.MultipartForm, constant.FormFileAadhar)

	return req, nil
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}

	return form.File[field][0]
}

// readUploads loads the validated file headers into memory for the service.
func (handler *Handler) readUploads(req dto.CreateBookingRequest) ([]dto.Upload, error) {
	limit := int64(handler.cfg.App.Upload.MaxSizeMB) * bytesPerMB
	uploads := make([]dto.Upload, 0, 2)

	files := []struct {
		field  string
		header *multipart.FileHeader
	}{{constant.FormFilePhoto, req.Photo}, {constant.FormFileAadhar, req.AadharFile}}

	for _, f := range files {
		field, header := f.field, f.header
		if header == nil {
			continue
		}

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", field, err)
		}

		content, err := storage.ReadAll(file, limit)
		_ = file.Close()

		if err != nil {
			return nil, failure.BadRequest(err)
		}

		uploads = append(uploads, dto.Upload{
			Field:       field,
			FileName:    header.Filename,
			ContentType: header.Header.Get(constant.RequestHeaderContentType),
			Content:     content,
		})
	}

	return uploads, nil
}
