package calculator

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number - числовой операнд или результат, который помнит, был ли он целым
type Number struct {
	i     int64
	f     float64
	isInt bool
}

func Int(v int64) Number {
	return Number{i: v, f: float64(v), isInt: true}
}

func Float(v float64) Number {
	return Number{f: v}
}

func (n Number) IsInt() bool {
	return n.isInt
}

func (n Number) Int64() int64 {
	if n.isInt {
		return n.i
	}
	return int64(n.f)
}

func (n Number) Float64() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func (n Number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// MarshalJSON кодирует целые как целые литералы, а дробные всегда с дробной
// частью или экспонентой (15 -> 15.0), чтобы тип числа не терялся в ответе.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.isInt {
		return strconv.AppendInt(nil, n.i, 10), nil
	}

	data, err := json.Marshal(n.f)
	if err != nil {
		return nil, err
	}
	if !bytes.ContainsAny(data, ".eE") {
		data = append(data, '.', '0')
	}
	return data, nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}

	if !bytes.ContainsAny(data, ".eE") {
		if v, err := num.Int64(); err == nil {
			*n = Int(v)
			return nil
		}
	}

	v, err := num.Float64()
	if err != nil {
		return err
	}
	*n = Float(v)
	return nil
}
