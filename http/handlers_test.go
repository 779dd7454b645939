package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"vinoapi/dataset"
)

type fakeModel struct {
	label int
	proba []float64
	err   error
}

func (f *fakeModel) Fit(X mat.Matrix, y []int) error { return nil }

func (f *fakeModel) Predict(features []float64) (int, error) {
	return f.label, f.err
}

func (f *fakeModel) PredictProba(features []float64) ([]float64, error) {
	return f.proba, f.err
}

func newTestMux(model *fakeModel) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandlers(model, zap.NewNop()).Register(mux)
	return mux
}

func validBody(t *testing.T) map[string]interface{} {
	t.Helper()
	body := make(map[string]interface{})
	for i, name := range dataset.FeatureNames() {
		body[name] = float64(i) + 0.5
	}
	return body
}

func postPredict(t *testing.T, mux *http.ServeMux, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux(&fakeModel{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status: %v", payload)
	}
}

func TestHandlePredict(t *testing.T) {
	mux := newTestMux(&fakeModel{label: 1, proba: []float64{0.1, 0.7, 0.2}})

	w := postPredict(t, mux, validBody(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		Prediction    int                `json:"prediction"`
		Probabilities map[string]float64 `json:"probabilities"`
		Message       string             `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Prediction != 1 {
		t.Fatalf("unexpected prediction: %d", payload.Prediction)
	}
	if payload.Message != "Vino clasificado como: Clase 1" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
	for i := 0; i < dataset.NumClasses; i++ {
		if _, ok := payload.Probabilities[fmt.Sprintf("clase_%d", i)]; !ok {
			t.Fatalf("missing probability key clase_%d: %v", i, payload.Probabilities)
		}
	}
	if payload.Probabilities["clase_1"] != 0.7 {
		t.Fatalf("unexpected probabilities: %v", payload.Probabilities)
	}
}

func TestHandlePredictMissingField(t *testing.T) {
	mux := newTestMux(&fakeModel{label: 0, proba: []float64{1, 0, 0}})

	body := validBody(t)
	delete(body, "proline")

	w := postPredict(t, mux, body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["detail"] == "" {
		t.Fatal("expected detail in error body")
	}
}

func TestHandlePredictNonNumericField(t *testing.T) {
	mux := newTestMux(&fakeModel{label: 0, proba: []float64{1, 0, 0}})

	body := validBody(t)
	body["alcohol"] = "high"

	w := postPredict(t, mux, body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandlePredictInferenceError(t *testing.T) {
	mux := newTestMux(&fakeModel{err: fmt.Errorf("model not fitted")})

	w := postPredict(t, mux, validBody(t))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.Contains(payload["detail"], "model not fitted") {
		t.Fatalf("expected error detail, got %v", payload)
	}
}

func TestHandlePredictBadProbabilityShape(t *testing.T) {
	mux := newTestMux(&fakeModel{label: 0, proba: []float64{1}})

	w := postPredict(t, mux, validBody(t))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}
