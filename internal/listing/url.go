// Package listing extracts best-effort car details from marketplace links
// and pages. Results only pre-fill a form; nothing here is authoritative.
package listing

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source names a supported marketplace.
type Source string

const (
	SourceAutoRu Source = "auto.ru"
	SourceAvito  Source = "avito.ru"
	SourceDrom   Source = "drom.ru"
)

// DefaultName is used when the link carries no brand or model.
const DefaultName = "Автомобиль"

// Listing is the data recovered from a marketplace link.
type Listing struct {
	Name   string  `json:"name"`
	Year   int     `json:"year"`
	Price  float64 `json:"price"`
	Source Source  `json:"source"`
}

// Parser parses marketplace links. The clock is injectable so the default
// year is testable.
type Parser struct {
	now func() time.Time
}

// NewParser creates a parser using the wall clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock creates a parser with a fixed clock.
func NewParserWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// ParseURL extracts name, year and price from an auto.ru link such as
// https://auto.ru/cars/bmw/x5/used/?year_from=2020&price_to=4500000.
// It returns nil for other hosts and malformed links.
func (p *Parser) ParseURL(raw string) *Listing {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil
	}
	if !strings.Contains(u.Hostname(), string(SourceAutoRu)) {
		return nil
	}

	result := &Listing{
		Name:   DefaultName,
		Year:   p.now().Year(),
		Source: SourceAutoRu,
	}

	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part != "cars" {
			continue
		}
		if i+2 < len(parts) && parts[i+1] != "" && parts[i+2] != "" {
			name := parts[i+1] + " " + parts[i+2]
			result.Name = strings.ReplaceAll(name, "_", " ")
		}
		break
	}

	query := u.Query()
	if year, ok := leadingInt(query.Get("year_from")); ok && year > 0 {
		result.Year = year
	}
	if price, ok := leadingInt(query.Get("price_to")); ok && price > 0 {
		result.Price = float64(price)
	}

	return result
}

// leadingInt reads the integer at the start of s, ignoring anything after
// it, so "2020abc" is 2020 and "4500000.99" is 4500000.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsSupportedURL reports whether raw points to a known marketplace.
func IsSupportedURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	for _, source := range []Source{SourceAutoRu, SourceAvito, SourceDrom} {
		if strings.Contains(host, string(source)) {
			return true
		}
	}
	return false
}
