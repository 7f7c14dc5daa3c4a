package orders

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

var (
	ErrDuplicateOrder     = errors.New("duplicate order number")
	ErrInvalidOrderNumber = errors.New("invalid order number")
)

func init() {
	// every column of Order must be present in the feed header
	gocsv.FailIfUnmatchedStructTags = true
}

// Order is a single row of the order feed.
type Order struct {
	Number  string `csv:"Order number"`
	Head    string `csv:"Head"`
	Body    string `csv:"Body"`
	Legs    int    `csv:"Legs"`
	Address string `csv:"Address"`
}

// Parse reads a comma delimited order feed, rows are returned in file order.
func Parse(r io.Reader) ([]Order, error) {
	var rows []Order
	err := gocsv.Unmarshal(r, &rows)
	if err != nil {
		return nil, fmt.Errorf("parse order feed: %w", err)
	}

	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		err := validateNumber(row.Number)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		prev, ok := seen[row.Number]
		if ok {
			return nil, fmt.Errorf("%w: %q on rows %d and %d", ErrDuplicateOrder, row.Number, prev+1, i+1)
		}
		seen[row.Number] = i
	}

	return rows, nil
}

// validateNumber rejects order numbers that cannot be used as a file name, the
// number names the receipt and screenshot of an order.
func validateNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidOrderNumber)
	}
	if strings.ContainsAny(number, `/\`) || strings.Contains(number, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidOrderNumber, number)
	}
	return nil
}
