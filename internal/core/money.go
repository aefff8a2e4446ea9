// Package core holds the invoice domain model: entities, money handling
// and the display-status classification rules.
//
// This file contains parsing and formatting for monetary amounts. Amounts
// are kept as integer cents so that every aggregation in the dashboard is
// exact integer addition; floats only appear at the formatting edge.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	gomoney "github.com/Rhymond/go-money"
)

// Money is a monetary amount in cents (two fixed decimal digits).
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseDecimalToCents converts an amount string to cents with half-up
// rounding on the third decimal digit.
//
// It accepts plain decimals with either separator ("1234.56", "1234,56")
// and Brazilian formatted strings ("1.234,56", "R$ 1.234,56"): when a comma
// is present, dots are treated as thousands separators and stripped.
// Returns ErrInvalidAmount for malformed, negative or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		// Formatted input: dots are grouping, comma is the decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take the first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseMoney parses an amount string into Money.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// BRL formats the amount as Brazilian currency, e.g. "R$1.234,56".
// The result round-trips through ParseDecimalToCents to the cent.
func (m Money) BRL() string {
	return gomoney.New(m.Cents, gomoney.BRL).Display()
}

// MarshalJSON serializes the amount as a number with exactly two
// fractional digits.
func (m Money) MarshalJSON() ([]byte, error) {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return []byte(fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)), nil
}

// UnmarshalJSON accepts either a JSON number or a formatted amount string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidAmount
	}
	switch v := raw.(type) {
	case string:
		cents, err := ParseDecimalToCents(v)
		if err != nil {
			return err
		}
		m.Cents = cents
	case float64:
		cents, err := ParseDecimalToCents(strconv.FormatFloat(v, 'f', -1, 64))
		if err != nil {
			return err
		}
		m.Cents = cents
	default:
		return ErrInvalidAmount
	}
	return nil
}
