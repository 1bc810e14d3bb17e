package health

import (
	"hostel/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const runningMessage = "SV PG Backend Running"

type Handler struct{}

func New() Handler {
	return Handler{}
}

func (h *Handler) Router(r chi.Router) {
	r.Get("/", h.Health)
}

// Health reports that the server is up.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Router / [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	response.WithMessage(w, http.StatusOK, runningMessage)
}
