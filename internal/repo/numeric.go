package repo

import "github.com/shopspring/decimal"

// Monetary columns are NUMERIC; values travel as their text representation so
// pgx never round-trips them through binary floats.

func decString(d decimal.Decimal) string {
	return d.String()
}

func decStringPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseDecPtr(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
