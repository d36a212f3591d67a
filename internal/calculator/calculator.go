package calculator

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrDivisionByZero   = errors.New("Cannot divide by zero")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrNonFinite        = errors.New("result is not a finite number")
)

type Operation string

const (
	Add      Operation = "add"
	Subtract Operation = "subtract"
	Multiply Operation = "multiply"
	Divide   Operation = "divide"
)

// Operations перечисляет операции в том порядке, в котором они публикуются в API
var Operations = []Operation{Add, Subtract, Multiply, Divide}

// ParseOperation возвращает операцию по имени маршрута
func ParseOperation(name string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(name)))
	if op.Valid() {
		return op, nil
	}
	return "", errors.Wrapf(ErrUnknownOperation, "%q", name)
}

func (o Operation) Valid() bool {
	switch o {
	case Add, Subtract, Multiply, Divide:
		return true
	}
	return false
}

func (o Operation) String() string {
	return string(o)
}

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func Calc(op Operation, a, b Number) (Number, error) {
	calc := NewCalculator()
	return calc.Calculate(op, a, b)
}

// Calculate выполняет одну бинарную операцию над двумя операндами.
// Целые операнды остаются целыми для сложения, вычитания и умножения,
// при переполнении int64 результат переводится в float.
func (c *Calculator) Calculate(op Operation, a, b Number) (Number, error) {
	var result Number

	switch op {
	case Add:
		result = c.add(a, b)
	case Subtract:
		result = c.subtract(a, b)
	case Multiply:
		result = c.multiply(a, b)
	case Divide:
		// делитель проверяется до деления
		if b.Float64() == 0 {
			return Number{}, ErrDivisionByZero
		}
		result = Float(a.Float64() / b.Float64())
	default:
		return Number{}, errors.Wrapf(ErrUnknownOperation, "%q", string(op))
	}

	if !result.IsInt() && (math.IsInf(result.f, 0) || math.IsNaN(result.f)) {
		return Number{}, errors.Wrapf(ErrNonFinite, "%s(%s, %s)", op, a, b)
	}

	return result, nil
}

func (c *Calculator) add(a, b Number) Number {
	if a.IsInt() && b.IsInt() {
		sum := a.i + b.i
		if (sum > a.i) == (b.i > 0) {
			return Int(sum)
		}
	}
	return Float(a.Float64() + b.Float64())
}

func (c *Calculator) subtract(a, b Number) Number {
	if a.IsInt() && b.IsInt() {
		diff := a.i - b.i
		if (diff < a.i) == (b.i > 0) {
			return Int(diff)
		}
	}
	return Float(a.Float64() - b.Float64())
}

func (c *Calculator) multiply(a, b Number) Number {
	if a.IsInt() && b.IsInt() {
		if a.i == 0 || b.i == 0 {
			return Int(0)
		}
		prod := a.i * b.i
		if prod/b.i == a.i && !(a.i == -1 && b.i == math.MinInt64) && !(b.i == -1 && a.i == math.MinInt64) {
			return Int(prod)
		}
	}
	return Float(a.Float64() * b.Float64())
}
