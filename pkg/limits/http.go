package limits

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/attnlabs/viral-middleware/pkg/app/http"
	"github.com/attnlabs/viral-middleware/pkg/auth"
)

// HTTP wraps the Service to provide quota endpoints
type HTTP struct {
	service *Service
	logger  *zap.Logger
}

// RegisterRoutes registers quota endpoints on the given chi router.
// Routes assume the auth middleware already ran.
func RegisterRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Get("/api/limits/user", apphttp.HandleError(h.snapshot))
	r.Post("/api/limits/check", apphttp.HandleError(h.check))
}

type snapshotResponse struct {
	UserID               string `json:"user_id"`
	DailyCreated         int    `json:"daily_created"`
	TotalCreated         int    `json:"total_created"`
	TotalPaid            int    `json:"total_paid"`
	FreeLimit            int    `json:"free_limit"`
	DailyLimit           int    `json:"daily_limit"`
	PlatformDailyCreated int    `json:"platform_daily_created"`
	PlatformTotalCreated int    `json:"platform_total_created"`
	PlatformDailyLimit   int    `json:"platform_daily_limit"`
}

func (h *HTTP) snapshot(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	user, platform, err := h.service.Snapshot(r.Context(), identity.UserID, identity.WalletAddress, identity.TwitterUsername)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &snapshotResponse{
		UserID:               user.UserID,
		DailyCreated:         user.DailyCreated,
		TotalCreated:         user.TotalCreated,
		TotalPaid:            user.TotalPaid,
		FreeLimit:            user.FreeLimit,
		DailyLimit:           user.DailyLimit,
		PlatformDailyCreated: platform.DailyCreated,
		PlatformTotalCreated: platform.TotalCreated,
		PlatformDailyLimit:   platform.DailyLimit,
	})
	return nil
}

func (h *HTTP) check(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	result, err := h.service.CheckUserCanCreate(r.Context(), identity.UserID, identity.WalletAddress, identity.TwitterUsername)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, result)
	return nil
}
