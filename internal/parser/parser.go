package parser

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"arithapi/internal/calculator"
)

var (
	ErrMissingField = errors.New("missing operand")
	ErrInvalidType  = errors.New("invalid operand type")
	ErrUnknownMode  = errors.New("unknown validation mode")
)

// Mode определяет, насколько строго проверяются операнды
type Mode string

const (
	// Permissive пытается привести значение к числу (числовые строки допустимы)
	Permissive Mode = "permissive"
	// Strict принимает только нативные JSON-числа
	Strict Mode = "strict"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Permissive, Strict:
		return m, nil
	}
	return "", errors.Wrapf(ErrUnknownMode, "%q", s)
}

func (m Mode) String() string {
	return string(m)
}

const (
	fieldNum1 = "num1"
	fieldNum2 = "num2"
)

// Operands - проверенная пара операндов запроса
type Operands struct {
	Num1 calculator.Number
	Num2 calculator.Number
}

type Parser struct {
	mode Mode
}

func NewParser(mode Mode) *Parser {
	if mode == "" {
		mode = Permissive
	}
	return &Parser{mode: mode}
}

func (p *Parser) Mode() Mode {
	return p.mode
}

// Parse разбирает тело запроса {"num1": N, "num2": N}.
// Пустое тело, не-объект и отсутствующие ключи дают ErrMissingField,
// неподходящие значения - ErrInvalidType.
func (p *Parser) Parse(body []byte) (Operands, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Operands{}, errors.Wrap(ErrMissingField, "empty body")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return Operands{}, errors.Wrapf(ErrMissingField, "payload is not a JSON object: %v", err)
	}
	if payload == nil {
		return Operands{}, errors.Wrap(ErrMissingField, "payload is null")
	}

	if p.mode == Strict {
		for key := range payload {
			if key != fieldNum1 && key != fieldNum2 {
				return Operands{}, errors.Wrapf(ErrInvalidType, "unexpected field %q", key)
			}
		}
	}

	raw1, ok1 := payload[fieldNum1]
	raw2, ok2 := payload[fieldNum2]
	if !ok1 || !ok2 {
		return Operands{}, errors.Wrap(ErrMissingField, "num1 and num2 are required")
	}

	num1, err := p.operand(fieldNum1, raw1)
	if err != nil {
		return Operands{}, err
	}
	num2, err := p.operand(fieldNum2, raw2)
	if err != nil {
		return Operands{}, err
	}

	return Operands{Num1: num1, Num2: num2}, nil
}

func (p *Parser) operand(field string, raw json.RawMessage) (calculator.Number, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return calculator.Number{}, errors.Wrapf(ErrInvalidType, "%s is empty", field)
	}

	switch c := raw[0]; {
	case c == '-' || (c >= '0' && c <= '9'):
		n, err := parseNumberLiteral(string(raw), p.mode == Strict)
		if err != nil {
			return calculator.Number{}, errors.Wrapf(ErrInvalidType, "%s: %v", field, err)
		}
		return n, nil
	case c == '"' && p.mode == Permissive:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return calculator.Number{}, errors.Wrapf(ErrInvalidType, "%s: %v", field, err)
		}
		f, err := parseFinite(strings.TrimSpace(s))
		if err != nil {
			return calculator.Number{}, errors.Wrapf(ErrInvalidType, "%s: %v", field, err)
		}
		return calculator.Float(f), nil
	}

	return calculator.Number{}, errors.Wrapf(ErrInvalidType, "%s is not a number: %s", field, raw)
}

// parseNumberLiteral разбирает JSON-число. keepInt сохраняет целые литералы
// как целые, иначе результат всегда дробный.
func parseNumberLiteral(lit string, keepInt bool) (calculator.Number, error) {
	if keepInt && !strings.ContainsAny(lit, ".eE") {
		if v, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return calculator.Int(v), nil
		}
	}

	f, err := parseFinite(lit)
	if err != nil {
		return calculator.Number{}, err
	}
	return calculator.Float(f), nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errors.Newf("%q is not a finite number", s)
	}
	return f, nil
}
