package stock

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// AdjustRequest is the validated payload for a manual stock correction.
type AdjustRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Location  string `json:"location" validate:"omitempty,max=100"`
	Operation string `json:"operation" validate:"required,oneof=add subtract set"`
	Quantity  int64  `json:"quantity" validate:"gte=0"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
}

// Handler exposes the stock surface as JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/stock/adjust", h.adjust)
	r.Get("/stock/low", h.lowStock)
	r.Get("/stock/{productID}/audit", h.listAudit)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	actor := shared.ActorFromContext(r.Context())
	record, err := h.service.Adjust(r.Context(), AdjustInput{
		ProductID: req.ProductID,
		Location:  req.Location,
		Operation: Operation(req.Operation),
		Amount:    req.Quantity,
		Reason:    req.Reason,
		ActorID:   actor.ID,
	})
	if err != nil {
		h.logger.Error("adjust stock failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.LowStock(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product ID", "product id must be a positive integer")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, total, err := h.service.ListAudit(r.Context(), productID, page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": shared.NewPagination(page, limit, total),
	})
}
