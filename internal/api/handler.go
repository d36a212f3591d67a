package api

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"arithapi/internal/calculator"
	"arithapi/internal/metrics"
	"arithapi/internal/models"
	"arithapi/internal/service"
)

const (
	WelcomeMessage = "Welcome to the Arithmetic API! Use /add, /subtract, /multiply, /divide endpoints."

	// Ограничение размера тела запроса: два числа в JSON
	maxBodyBytes = 1 << 16
)

type CalculatorHandler struct {
	svc     *service.Service
	metrics *metrics.Collector
	base    *zap.SugaredLogger
	log     *zap.SugaredLogger
}

type HandlerOption func(*CalculatorHandler)

func WithMetrics(c *metrics.Collector) HandlerOption {
	return func(h *CalculatorHandler) {
		h.metrics = c
	}
}

func WithLogger(log *zap.SugaredLogger) HandlerOption {
	return func(h *CalculatorHandler) {
		h.base = log
	}
}

func NewCalculatorHandler(svc *service.Service, opts ...HandlerOption) *CalculatorHandler {
	h := &CalculatorHandler{
		svc:  svc,
		base: zap.S(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.base.With("module", "api")
	return h
}

// Welcome отвечает на GET /
func (h *CalculatorHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, WelcomeMessage)
}

// Operation возвращает обработчик маршрута конкретной операции (/add, /divide, ...)
func (h *CalculatorHandler) Operation(op calculator.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.calculate(w, r, op)
	}
}

// Calculate обрабатывает POST /calculate/{operation}
func (h *CalculatorHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "operation")
	op, err := calculator.ParseOperation(name)
	if err != nil {
		// неизвестное имя отклоняется сервисом вместе с обычными ошибками ввода
		op = calculator.Operation(name)
	}
	h.calculate(w, r, op)
}

func (h *CalculatorHandler) Health(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

func (h *CalculatorHandler) calculate(w http.ResponseWriter, r *http.Request, op calculator.Operation) {
	start := time.Now()

	// Ошибка чтения тела приравнивается к отсутствующему телу
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.log.Debugw("Не удалось прочитать тело запроса", "operation", op, "error", err)
		body = nil
	}

	resp, err := h.svc.Evaluate(op, body)
	h.metrics.Observe(metrics.TransportHTTP, operationLabel(op), service.Outcome(err), time.Since(start))

	if err != nil {
		message := h.svc.Message(err)
		h.log.Infow("Запрос отклонён",
			"operation", op,
			"request_id", RequestIDFromContext(r.Context()),
			"reason", err.Error(),
			"message", message,
		)
		SendErrorResponse(w, http.StatusBadRequest, message)
		return
	}

	h.log.Debugw("Операция выполнена",
		"operation", op,
		"request_id", RequestIDFromContext(r.Context()),
		"result", resp.Result.String(),
	)
	SendSuccessResponse(w, resp)
}

func operationLabel(op calculator.Operation) string {
	if !op.Valid() {
		return "unknown"
	}
	return string(op)
}
