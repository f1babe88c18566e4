// Package importer turns a spreadsheet export of name/price rows into menu items.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/easysplit/internal/menu"
)

// ErrInvalid wraps every problem with the uploaded file's content.
var ErrInvalid = errors.New("invalid menu file")

// MaxItems caps how many rows one file may produce.
const MaxItems = 500

// Parse reads rows of name and price. Either "," or ";" separates fields, a header row
// is optional, and prices may carry a currency symbol or a decimal comma.
func Parse(r io.Reader) ([]menu.ItemParams, error) {
	utf8r, err := toUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	comma, err := sniffDelimiter(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", ErrInvalid, err)
	}

	items := make([]menu.ItemParams, 0, len(rows))
	seenData := false

	for i, row := range rows {
		line := i + 1

		if blank(row) {
			continue
		}

		if len(row) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected name and price", ErrInvalid, line)
		}

		name := strings.TrimSpace(row[0])

		price, err := parsePrice(row[1])
		if err != nil {
			if !seenData {
				// First non-blank row that is not a price is the header.
				seenData = true
				continue
			}

			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalid, line, err)
		}

		seenData = true

		if name == "" {
			return nil, fmt.Errorf("%w: line %d: missing item name", ErrInvalid, line)
		}

		items = append(items, menu.ItemParams{Name: name, Price: price})

		if len(items) > MaxItems {
			return nil, fmt.Errorf("%w: more than %d items", ErrInvalid, MaxItems)
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items found", ErrInvalid)
	}

	return items, nil
}

// sniffDelimiter picks ";" when the first line has at least as many semicolons as commas.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	head, err := br.Peek(512)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("peek: %w", err)
	}

	first := string(head)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}

	if semis := strings.Count(first, ";"); semis > 0 && semis >= strings.Count(first, ",") {
		return ';', nil
	}

	return ',', nil
}

// parsePrice accepts "12.50", "12,50", "£12.50", "1,234.50" and "1.234,50".
func parsePrice(s string) (float64, error) {
	clean := strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Sc, r)
	})

	dot := strings.LastIndexByte(clean, '.')
	comma := strings.LastIndexByte(clean, ',')

	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0:
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}

	if !d.IsPositive() {
		return 0, fmt.Errorf("price %q must be greater than zero", s)
	}

	return d.Round(2).InexactFloat64(), nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
