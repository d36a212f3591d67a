package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"arithapi/internal/models"
)

type SuccessResponse = models.ArithmeticResponse

type ErrorResponse = models.ErrorResponse

// SendJSON сериализует v до записи заголовков, чтобы при ошибке можно было ответить 500
func SendJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.S().With("module", "api").Errorw("Ошибка сериализации ответа", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	SendJSON(w, status, ErrorResponse{Error: message})
}

func SendSuccessResponse(w http.ResponseWriter, resp SuccessResponse) {
	SendJSON(w, http.StatusOK, resp)
}
