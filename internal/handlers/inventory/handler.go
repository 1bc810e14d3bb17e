package inventory

import (
	"hostel/infras/otel"
	"hostel/internal/domains/inventory"
	"hostel/shared/constant"
	"hostel/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	topology inventory.Topology
	otel     otel.Otel
}

func New(topology inventory.Topology, otel otel.Otel) Handler {
	return Handler{
		topology: topology,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/inventory", handler.GetLayout)
}

// GetLayout returns the floors with their rooms and bed capacities.
// @Summary Hostel layout
// @Tags Inventory
// @Produce json
// @Success 200 {object} response.Data[[]inventory.FloorLayout] "Floors, rooms and capacities"
// @Router /inventory [get]
func (handler *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	_, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetLayout")
	defer scope.End()

	response.WithJSON(w, http.StatusOK, handler.topology.Layout())
}
