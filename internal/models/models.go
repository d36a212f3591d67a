package models

import "arithapi/internal/calculator"

// ArithmeticRequest - тело запроса для всех четырёх операций
type ArithmeticRequest struct {
	Num1 calculator.Number `json:"num1"`
	Num2 calculator.Number `json:"num2"`
}

// ArithmeticResponse - успешный ответ. Operation заполняется, только если
// включено эхо операции.
type ArithmeticResponse struct {
	Operation string            `json:"operation,omitempty"`
	Result    calculator.Number `json:"result"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
