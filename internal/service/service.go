package service

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"arithapi/internal/calculator"
	"arithapi/internal/metrics"
	"arithapi/internal/models"
	"arithapi/internal/parser"
)

// Тексты ошибок, которые видит клиент
const (
	MsgMissingField   = "Missing num1 or num2 in JSON payload"
	MsgInvalidType    = "Invalid input type"
	MsgInvalidStrict  = "Invalid input, please provide numbers."
	MsgDivisionByZero = "Cannot divide by zero"
)

// ErrUnexpected - любая непредвиденная ошибка во время вычисления
var ErrUnexpected = errors.New("unexpected failure during calculation")

// Service - общий для HTTP и gRPC цикл разбор -> проверка -> вычисление
type Service struct {
	parser *parser.Parser
	calc   *calculator.Calculator
	echo   bool
}

func New(mode parser.Mode, echoOperation bool) *Service {
	return &Service{
		parser: parser.NewParser(mode),
		calc:   calculator.NewCalculator(),
		echo:   echoOperation,
	}
}

func (s *Service) Mode() parser.Mode {
	return s.parser.Mode()
}

func (s *Service) EchoOperation() bool {
	return s.echo
}

// Evaluate обрабатывает тело запроса для операции op.
// Паника внутри вычисления превращается в ErrUnexpected.
func (s *Service) Evaluate(op calculator.Operation, body []byte) (resp models.ArithmeticResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = models.ArithmeticResponse{}
			err = errors.Wrapf(ErrUnexpected, "%s: %v", op, r)
		}
	}()

	if !op.Valid() {
		return models.ArithmeticResponse{}, errors.Wrapf(calculator.ErrUnknownOperation, "%q", string(op))
	}

	operands, err := s.parser.Parse(body)
	if err != nil {
		return models.ArithmeticResponse{}, err
	}

	result, err := s.calc.Calculate(op, operands.Num1, operands.Num2)
	if err != nil {
		return models.ArithmeticResponse{}, err
	}

	resp = models.ArithmeticResponse{Result: result}
	if s.echo {
		resp.Operation = op.String()
	}
	return resp, nil
}

// Message возвращает текст ошибки для клиента в зависимости от режима
func (s *Service) Message(err error) string {
	switch {
	case errors.Is(err, calculator.ErrDivisionByZero):
		return MsgDivisionByZero
	case s.Mode() == parser.Strict:
		return MsgInvalidStrict
	case errors.Is(err, parser.ErrMissingField):
		return MsgMissingField
	default:
		return MsgInvalidType
	}
}

// Outcome классифицирует результат запроса для метрик
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, calculator.ErrDivisionByZero):
		return metrics.OutcomeDivideByZero
	case errors.Is(err, parser.ErrMissingField):
		return metrics.OutcomeMissingField
	default:
		return metrics.OutcomeInvalidType
	}
}

func (s *Service) String() string {
	return fmt.Sprintf("service(mode=%s, echo=%t)", s.Mode(), s.echo)
}
