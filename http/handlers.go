package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"vinoapi/dataset"
	"vinoapi/ml"
)

var classNames = [dataset.NumClasses]string{"Clase 0", "Clase 1", "Clase 2"}

// Handlers holds the fitted model and logger shared by all requests. The model
// is read-only after startup, so concurrent handlers need no locking.
type Handlers struct {
	model  ml.Classifier
	logger *zap.Logger
}

func NewHandlers(model ml.Classifier, logger *zap.Logger) *Handlers {
	return &Handlers{model: model, logger: logger}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /predict", h.handlePredict)
}

type predictionResponse struct {
	Prediction    int                `json:"prediction"`
	Probabilities map[string]float64 `json:"probabilities"`
	Message       string             `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var payload WineFeatures
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if err := payload.Validate(); err != nil {
		h.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	features := payload.Vector()
	h.logger.Info("prediction request received",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Float64s("features", features),
	)

	label, err := h.model.Predict(features)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	proba, err := h.model.PredictProba(features)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if label < 0 || label >= len(classNames) || len(proba) != len(classNames) {
		h.writeError(w, r, http.StatusInternalServerError,
			fmt.Errorf("model returned label %d with %d probabilities", label, len(proba)))
		return
	}

	probabilities := make(map[string]float64, len(proba))
	for i, p := range proba {
		probabilities[fmt.Sprintf("clase_%d", i)] = p
	}

	h.logger.Info("prediction succeeded",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Int("prediction", label),
		zap.Float64s("probabilities", proba),
	)
	writeJSON(w, http.StatusOK, predictionResponse{
		Prediction:    label,
		Probabilities: probabilities,
		Message:       "Vino clasificado como: " + classNames[label],
	})
}

// writeError is the single conversion point from internal errors to the HTTP
// error envelope. 4xx statuses are client mistakes and logged at info level;
// everything else is a failed inference and logged at error level.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
	} else {
		h.logger.Info("request rejected",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Int("status", status),
			zap.String("reason", err.Error()),
		)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
