package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"predserve/db"
)

func newTestMux(t *testing.T) (*http.ServeMux, *db.Store) {
	t.Helper()
	store, err := db.Open("", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewHandlers(store, zap.NewNop()).Register(mux)
	return mux, store
}

func do(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	mux, _ := newTestMux(t)

	w := do(mux, http.MethodGet, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHandlePredict(t *testing.T) {
	mux, store := newTestMux(t)

	w := do(mux, http.MethodPost, "/predict")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "0.5" {
		t.Fatalf("expected body %q, got %q", "0.5", w.Body.String())
	}

	p, err := store.GetPrediction(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Proba != 0.5 || !p.PredictedClass || p.TrueClass != nil {
		t.Fatalf("unexpected stored row: %+v", p)
	}
}

func TestHandlePredictTwiceFails(t *testing.T) {
	mux, _ := newTestMux(t)

	if w := do(mux, http.MethodPost, "/predict"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(mux, http.MethodPost, "/predict"); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on duplicate predict, got %d", w.Code)
	}
}

func TestHandleUpdateWithoutPredictFails(t *testing.T) {
	mux, _ := newTestMux(t)

	if w := do(mux, http.MethodPost, "/update"); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when no row exists, got %d", w.Code)
	}
}

func TestHandlePredictThenUpdate(t *testing.T) {
	mux, store := newTestMux(t)

	if w := do(mux, http.MethodPost, "/predict"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w := do(mux, http.MethodPost, "/update")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Fatalf("expected body %q, got %q", "success", w.Body.String())
	}

	list, err := store.ListPredictions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 row, got %d", len(list))
	}
	if list[0].TrueClass == nil || *list[0].TrueClass != false {
		t.Fatalf("expected true_class false, got %+v", list[0].TrueClass)
	}
}

func TestHandleListDBContents(t *testing.T) {
	mux, store := newTestMux(t)

	for id := 0; id < 3; id++ {
		if err := store.InsertPrediction(db.Prediction{ObservationID: id, Proba: 0.5, PredictedClass: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.SetTrueClass(id, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	w := do(mux, http.MethodGet, "/list-db-contents")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var payload []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(payload))
	}
	for _, obj := range payload {
		for _, field := range []string{"observation_id", "proba", "predicted_class", "true_class"} {
			if _, ok := obj[field]; !ok {
				t.Fatalf("missing field %q in %v", field, obj)
			}
		}
		if obj["true_class"].(bool) != false {
			t.Fatalf("unexpected true_class: %v", obj["true_class"])
		}
	}
}

func TestHandleListDBContentsEmpty(t *testing.T) {
	mux, _ := newTestMux(t)

	w := do(mux, http.MethodGet, "/list-db-contents")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var payload []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload == nil || len(payload) != 0 {
		t.Fatalf("expected empty array, got %v", payload)
	}
}
