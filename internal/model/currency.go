package model

import (
	"fmt"
	"strings"
)

// Currency identifies one of the fixed resource types tracked by the economy.
type Currency int

const (
	GingerBread Currency = iota
	CandyCane
	Cookie

	// NumCurrencies is the size of the closed currency set.
	NumCurrencies = 3
)

// Currencies lists every currency in declaration order.
var Currencies = [NumCurrencies]Currency{GingerBread, CandyCane, Cookie}

var currencyNames = [NumCurrencies]string{"GingerBread", "CandyCane", "Cookie"}

// Valid reports whether c is a member of the currency set.
func (c Currency) Valid() bool {
	return c >= 0 && int(c) < NumCurrencies
}

func (c Currency) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Currency(%d)", int(c))
	}
	return currencyNames[c]
}

// ParseCurrency maps a canonical currency name (case-insensitive) to its value.
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	for i, name := range currencyNames {
		if strings.EqualFold(name, s) {
			return Currency(i), nil
		}
	}
	return 0, fmt.Errorf("unknown currency %q", s)
}

func (c Currency) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("marshal currency: invalid value %d", int(c))
	}
	return []byte(currencyNames[c]), nil
}

func (c *Currency) UnmarshalText(text []byte) error {
	v, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
