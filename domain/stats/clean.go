package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CleanNumeric converts raw spreadsheet tokens into numbers. Each token is
// stringified, every comma becomes a period, surrounding whitespace is trimmed
// and the result is parsed as a float. Tokens that do not parse to a finite
// number are marked Missing. The output has the same length as the input.
func CleanNumeric(values []any) []Value {
	out := make([]Value, len(values))
	for i, raw := range values {
		if raw == nil {
			out[i] = Value{Missing: true}
			continue
		}
		out[i] = parseToken(fmt.Sprint(raw))
	}
	return out
}

// CleanStrings is CleanNumeric for cells that are already text.
func CleanStrings(cells []string) []Value {
	out := make([]Value, len(cells))
	for i, cell := range cells {
		out[i] = parseToken(cell)
	}
	return out
}

// Usable drops missing entries, preserving order.
func Usable(values []Value) Sample {
	sample := make(Sample, 0, len(values))
	for _, v := range values {
		if !v.Missing {
			sample = append(sample, v.Number)
		}
	}
	return sample
}

// CleanSample cleans raw tokens and returns only the usable numbers.
func CleanSample(values []any) Sample {
	return Usable(CleanNumeric(values))
}

func parseToken(token string) Value {
	token = strings.TrimSpace(strings.ReplaceAll(token, ",", "."))
	if token == "" {
		return Value{Missing: true}
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{Missing: true}
	}
	return Value{Number: f}
}
