package memathon

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
	apphttp "github.com/attnlabs/viral-middleware/pkg/app/http"
)

var validate = validator.New()

type HTTP struct {
	service *Service
	logger  *zap.Logger
}

// RegisterRoutes registers contest endpoints. The sponsored-tweet listing
// and leaderboard are read endpoints; creation, deactivation, and winner
// selection are admin operations and the router mounts them behind the
// admin guard.
func RegisterRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Get("/api/memathon/sponsored-tweets", apphttp.HandleError(h.listActive))
	r.Get("/api/memathon/leaderboard", apphttp.HandleError(h.leaderboard))
}

// RegisterAdminRoutes registers campaign administration endpoints.
func RegisterAdminRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Post("/api/memathon/sponsored-tweets", apphttp.HandleError(h.createSponsoredTweet))
	r.Post("/api/memathon/sponsored-tweets/{id}/deactivate", apphttp.HandleError(h.deactivate))
	r.Post("/api/memathon/participants/{id}/winner", apphttp.HandleError(h.selectWinner))
}

func (h *HTTP) createSponsoredTweet(w http.ResponseWriter, r *http.Request) error {
	var params CreateSponsoredTweetParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		return apperrors.BadRequestError(err, "invalid request body")
	}
	if err := validate.Struct(&params); err != nil {
		return apperrors.BadRequestError(err, "invalid sponsored tweet")
	}

	tweet, err := h.service.CreateSponsoredTweet(r.Context(), params)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, tweet)
	return nil
}

func (h *HTTP) listActive(w http.ResponseWriter, r *http.Request) error {
	season, _ := strconv.Atoi(r.URL.Query().Get("season"))
	category := r.URL.Query().Get("category")

	tweets, err := h.service.ListActive(r.Context(), season, category)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, tweets)
	return nil
}

func (h *HTTP) leaderboard(w http.ResponseWriter, r *http.Request) error {
	season, _ := strconv.Atoi(r.URL.Query().Get("season"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	participants, err := h.service.Leaderboard(r.Context(), season, limit)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, participants)
	return nil
}

func (h *HTTP) deactivate(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]bool{"deactivated": true})
	return nil
}

func (h *HTTP) selectWinner(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.SelectWinner(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]bool{"winner": true})
	return nil
}
