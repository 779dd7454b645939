package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"vinoapi/dataset"
	"vinoapi/ml"
)

var (
	fittedOnce  sync.Once
	fittedModel *ml.RandomForest
	fittedErr   error
)

func fittedForest(t *testing.T) *ml.RandomForest {
	t.Helper()
	fittedOnce.Do(func() {
		samples, labels, err := dataset.Load()
		if err != nil {
			fittedErr = err
			return
		}
		trainX, trainY, _, _ := dataset.Split(samples, labels, 0.2, 42)
		forest := ml.NewRandomForest(100, 10, 42)
		if err := forest.Fit(trainX, trainY); err != nil {
			fittedErr = err
			return
		}
		fittedModel = forest
	})
	if fittedErr != nil {
		t.Fatalf("fit forest: %v", fittedErr)
	}
	return fittedModel
}

// posting the measurements of a known class-0 sample through the full stack
func TestPredictEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	NewHandlers(fittedForest(t), zap.NewNop()).Register(mux)

	body := `{
		"alcohol": 14.23,
		"malic_acid": 1.71,
		"ash": 2.43,
		"alcalinity_of_ash": 15.6,
		"magnesium": 127,
		"total_phenols": 2.8,
		"flavanoids": 3.06,
		"nonflavanoid_phenols": 0.28,
		"proanthocyanins": 2.29,
		"color_intensity": 5.64,
		"hue": 1.04,
		"od280_od315_of_diluted_wines": 3.92,
		"proline": 1065
	}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

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
	if payload.Prediction != 0 {
		t.Fatalf("expected class 0, got %d (%v)", payload.Prediction, payload.Probabilities)
	}
	if !strings.Contains(payload.Message, "Clase 0") {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
	sum := 0.0
	for _, p := range payload.Probabilities {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", payload.Probabilities)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("probabilities should sum to 1, got %f", sum)
	}
}

// same fitted model, same input, identical output
func TestPredictEndToEndDeterministic(t *testing.T) {
	forest := fittedForest(t)

	input := []float64{14.23, 1.71, 2.43, 15.6, 127, 2.8, 3.06, 0.28, 2.29, 5.64, 1.04, 3.92, 1065}
	probaA, err := forest.PredictProba(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	probaB, err := forest.PredictProba(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range probaA {
		if probaA[i] != probaB[i] {
			t.Fatalf("repeated inference differs: %v vs %v", probaA, probaB)
		}
	}
}

// middleware chain end to end: health through the full server handler
func TestServerHealthThroughMiddleware(t *testing.T) {
	logger := zap.NewNop()
	handlers := NewHandlers(&fakeModel{label: 0, proba: []float64{1, 0, 0}}, logger)
	server := NewServer(DefaultServerConfig(), handlers, logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected security headers, got %q", got)
	}
}
