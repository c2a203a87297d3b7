package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"predserve/db"
)

// The demo always scores the same observation: id 0 with a placeholder
// probability of 0.5.
const (
	demoObservationID = 0
	placeholderProba  = 0.5
)

// Handlers serves the prediction endpoints against an injected store.
type Handlers struct {
	store *db.Store
	log   *zap.Logger
}

func NewHandlers(store *db.Store, log *zap.Logger) *Handlers {
	return &Handlers{store: store, log: log}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("POST /update", h.handleUpdate)
	mux.HandleFunc("GET /list-db-contents", h.handleListDBContents)
	mux.HandleFunc("GET /api/health", h.handleHealth)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handlePredict records a new prediction row and returns the probability as
// plain text. A repeat call violates the uniqueness constraint on the
// observation id and surfaces the driver error as a 500.
func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	p := db.Prediction{
		ObservationID:  demoObservationID,
		Proba:          placeholderProba,
		PredictedClass: true,
	}
	if err := h.store.InsertPrediction(p); err != nil {
		h.log.Warn("insert prediction failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "%g", placeholderProba)
}

// handleUpdate patches the ground-truth label onto the stored row. The row
// must already exist; absence surfaces as a 500, matching the create-first
// contract.
func (h *Handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.GetPrediction(demoObservationID); err != nil {
		h.log.Warn("prediction lookup failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.store.SetTrueClass(demoObservationID, false); err != nil {
		h.log.Warn("label update failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Fprint(w, "success")
}

// handleListDBContents dumps every stored row as a JSON array.
func (h *Handlers) handleListDBContents(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.store.ListPredictions()
	if err != nil {
		h.log.Warn("list predictions failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(predictions)
}
