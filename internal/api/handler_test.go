package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arithapi/internal/metrics"
	"arithapi/internal/parser"
	"arithapi/internal/service"
)

func prepareRouter(mode parser.Mode, echo bool) (http.Handler, *metrics.Collector) {
	collector := metrics.NewCollector()
	h := NewCalculatorHandler(
		service.New(mode, echo),
		WithMetrics(collector),
		WithLogger(zap.NewNop().Sugar()),
	)
	return SetupRouter(h, collector.Handler()), collector
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "ответ должен быть JSON: %s", w.Body.String())
	return body
}

func TestWelcome(t *testing.T) {
	router, _ := prepareRouter(parser.Permissive, true)

	w := doRequest(t, router, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to the Arithmetic API")
	assert.Equal(t, WelcomeMessage, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestOperationsPermissive(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantResult float64
		wantError  string
	}{
		{
			name:       "сложение",
			path:       "/add",
			body:       `{"num1": 10, "num2": 5}`,
			wantStatus: http.StatusOK,
			wantResult: 15,
		},
		{
			name:       "вычитание",
			path:       "/subtract",
			body:       `{"num1": 100, "num2": 25}`,
			wantStatus: http.StatusOK,
			wantResult: 75,
		},
		{
			name:       "умножение",
			path:       "/multiply",
			body:       `{"num1": 2.5, "num2": 4}`,
			wantStatus: http.StatusOK,
			wantResult: 10,
		},
		{
			name:       "деление",
			path:       "/divide",
			body:       `{"num1": 10, "num2": 4}`,
			wantStatus: http.StatusOK,
			wantResult: 2.5,
		},
		{
			name:       "числовые строки",
			path:       "/add",
			body:       `{"num1": "1.5", "num2": "2"}`,
			wantStatus: http.StatusOK,
			wantResult: 3.5,
		},
		{
			name:       "деление на ноль",
			path:       "/divide",
			body:       `{"num1": 10, "num2": 0}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgDivisionByZero,
		},
		{
			name:       "нет num2",
			path:       "/multiply",
			body:       `{"num1": 10}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgMissingField,
		},
		{
			name:       "нет num1",
			path:       "/subtract",
			body:       `{"num2": 10}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgMissingField,
		},
		{
			name:       "пустое тело",
			path:       "/add",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgMissingField,
		},
		{
			name:       "нечисловая строка",
			path:       "/add",
			body:       `{"num1": "abc", "num2": 5}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgInvalidType,
		},
		{
			name:       "нечисловой делитель",
			path:       "/divide",
			body:       `{"num1": 5, "num2": "abc"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgInvalidType,
		},
		{
			name:       "переполнение",
			path:       "/multiply",
			body:       `{"num1": 1e308, "num2": 10}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgInvalidType,
		},
	}

	router, _ := prepareRouter(parser.Permissive, true)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, tt.path, tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			body := decodeBody(t, w)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				assert.NotContains(t, body, "result")
				assert.NotContains(t, body, "operation")
				return
			}

			assert.NotContains(t, body, "error")
			assert.Equal(t, tt.wantResult, body["result"])
			assert.Equal(t, strings.TrimPrefix(tt.path, "/"), body["operation"])
		})
	}
}

func TestOperationsStrict(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantRaw    string
		wantError  string
	}{
		{
			name:       "целые остаются целыми",
			path:       "/add",
			body:       `{"num1": 2, "num2": 3}`,
			wantStatus: http.StatusOK,
			wantRaw:    `{"result":5}`,
		},
		{
			name:       "дробное сохраняется",
			path:       "/add",
			body:       `{"num1": 2.0, "num2": 3}`,
			wantStatus: http.StatusOK,
			wantRaw:    `{"result":5.0}`,
		},
		{
			name:       "деление всегда дробное",
			path:       "/divide",
			body:       `{"num1": 10, "num2": 5}`,
			wantStatus: http.StatusOK,
			wantRaw:    `{"result":2.0}`,
		},
		{
			name:       "числовая строка",
			path:       "/add",
			body:       `{"num1": "5", "num2": 3}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgInvalidStrict,
		},
		{
			name:       "нет операнда",
			path:       "/subtract",
			body:       `{"num1": 5}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgInvalidStrict,
		},
		{
			name:       "деление на ноль",
			path:       "/divide",
			body:       `{"num1": 5, "num2": 0}`,
			wantStatus: http.StatusBadRequest,
			wantError:  service.MsgDivisionByZero,
		},
	}

	router, _ := prepareRouter(parser.Strict, false)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, tt.path, tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeBody(t, w)["error"])
				return
			}
			assert.JSONEq(t, tt.wantRaw, w.Body.String())
			assert.Equal(t, tt.wantRaw, strings.TrimSpace(w.Body.String()))
		})
	}
}

func TestCalculateByOperationParam(t *testing.T) {
	router, _ := prepareRouter(parser.Permissive, true)

	w := doRequest(t, router, http.MethodPost, "/calculate/multiply", `{"num1": 6, "num2": 7}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 42.0, body["result"])
	assert.Equal(t, "multiply", body["operation"])

	w = doRequest(t, router, http.MethodPost, "/calculate/DIVIDE", `{"num1": 1, "num2": 4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.25, decodeBody(t, w)["result"])

	w = doRequest(t, router, http.MethodPost, "/calculate/power", `{"num1": 2, "num2": 3}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgInvalidType, decodeBody(t, w)["error"])
}

func TestOperationRoutesRejectGet(t *testing.T) {
	router, _ := prepareRouter(parser.Permissive, true)

	w := doRequest(t, router, http.MethodGet, "/add", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := prepareRouter(parser.Permissive, true)

	w := doRequest(t, router, http.MethodGet, "/", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsRecorded(t *testing.T) {
	router, collector := prepareRouter(parser.Permissive, true)

	doRequest(t, router, http.MethodPost, "/add", `{"num1": 1, "num2": 2}`)
	doRequest(t, router, http.MethodPost, "/divide", `{"num1": 1, "num2": 0}`)
	doRequest(t, router, http.MethodPost, "/calculate/power", `{"num1": 1, "num2": 0}`)

	counter := collector.RequestCounter()
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(metrics.TransportHTTP, "add", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(metrics.TransportHTTP, "divide", metrics.OutcomeDivideByZero)))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(metrics.TransportHTTP, "unknown", metrics.OutcomeInvalidType)))

	w := doRequest(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arithmetic_requests_total")
}

func TestRouterWithoutMetrics(t *testing.T) {
	h := NewCalculatorHandler(service.New(parser.Permissive, true), WithLogger(zap.NewNop().Sugar()))
	router := SetupRouter(h, nil)

	w := doRequest(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodPost, "/add", `{"num1": 1, "num2": 2}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
