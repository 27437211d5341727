package service

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
	apphttp "github.com/attnlabs/viral-middleware/pkg/app/http"
	"github.com/attnlabs/viral-middleware/pkg/auth"
	"github.com/attnlabs/viral-middleware/pkg/token"
)

var validate = validator.New()

type HTTP struct {
	orchestrator *Orchestrator
	logger       *zap.Logger
}

// RegisterDeployRoute registers the deploy endpoint separately so the
// router can stack the per-IP rate limiter on it alone.
func RegisterDeployRoute(r chi.Router, orchestrator *Orchestrator, logger *zap.Logger) {
	h := &HTTP{orchestrator: orchestrator, logger: logger}
	r.Post("/token/deploy", apphttp.HandleError(h.deploy))
}

// RegisterPublicRoutes registers the unauthenticated token read endpoint.
func RegisterPublicRoutes(r chi.Router, orchestrator *Orchestrator, logger *zap.Logger) {
	h := &HTTP{orchestrator: orchestrator, logger: logger}

	r.Get("/token/{contract}", apphttp.HandleError(h.get))
}

// RegisterRoutes registers the authenticated claim and listing endpoints.
func RegisterRoutes(r chi.Router, orchestrator *Orchestrator, logger *zap.Logger) {
	h := &HTTP{orchestrator: orchestrator, logger: logger}

	r.Post("/token/{contract}/claim", apphttp.HandleError(h.claim))
	r.Get("/api/tokens/mine", apphttp.HandleError(h.listMine))
}

type deployResponse struct {
	Status string       `json:"status"`
	Token  *tokenPublic `json:"token"`
}

// tokenPublic is the wire shape of a token.
type tokenPublic struct {
	ContractAddress   string            `json:"contract_address"`
	Name              string            `json:"name"`
	Symbol            string            `json:"symbol"`
	OwnerTwitter      string            `json:"owner_twitter,omitempty"`
	OwnerAddress      string            `json:"owner_address"`
	InfluencerTwitter string            `json:"influencer_twitter,omitempty"`
	InfluencerAddress string            `json:"influencer_address,omitempty"`
	Unclaimed         bool              `json:"unclaimed"`
	OriginalPost      string            `json:"original_post,omitempty"`
	SplitAddress      string            `json:"split_address,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (h *HTTP) deploy(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	var req DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid deploy request")
	}

	minted, err := h.orchestrator.Deploy(r.Context(), &req, identity)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &deployResponse{
		Status: "created",
		Token:  toTokenPublic(minted),
	})
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	t, err := h.orchestrator.Get(r.Context(), chi.URLParam(r, "contract"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toTokenPublic(t))
	return nil
}

func (h *HTTP) claim(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	t, err := h.orchestrator.Claim(r.Context(), chi.URLParam(r, "contract"), identity)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toTokenPublic(t))
	return nil
}

func (h *HTTP) listMine(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tokens, err := h.orchestrator.ListByOwner(r.Context(), identity.WalletAddress, limit)
	if err != nil {
		return err
	}

	out := make([]*tokenPublic, len(tokens))
	for i, t := range tokens {
		out[i] = toTokenPublic(t)
	}
	apphttp.WriteJSON(w, http.StatusOK, out)
	return nil
}

func toTokenPublic(t *token.Token) *tokenPublic {
	return &tokenPublic{
		ContractAddress:   t.ContractAddress,
		Name:              t.Name,
		Symbol:            t.Symbol,
		OwnerTwitter:      t.OwnerTwitter,
		OwnerAddress:      t.OwnerAddress,
		InfluencerTwitter: t.InfluencerTwitter,
		InfluencerAddress: t.InfluencerAddress,
		Unclaimed:         t.Unclaimed,
		OriginalPost:      t.OriginalPost,
		SplitAddress:      t.SplitAddress,
		Metadata:          t.Metadata,
	}
}
