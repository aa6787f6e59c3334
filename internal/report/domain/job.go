package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Job represents a report request as known by the status store
type Job struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	SampleSize int    `json:"sample_size"`
	Status     Status `json:"status"`
	URL        string `json:"url,omitempty"`
}

// Message is a validated inbound queue message.
// RawSampleSize is kept undecoded so a malformed value only fails the job
// once its identifier is known.
type Message struct {
	ID            int64
	RawSampleSize json.RawMessage
}

// SampleSize decodes the requested sample size. A missing or null value means 0 (all items).
func (m *Message) SampleSize() (int, error) {
	raw := bytes.TrimSpace(m.RawSampleSize)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	var num json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, NewValidationError("sample_size", err.Error())
		}
		num = json.Number(strings.TrimSpace(s))
	} else {
		num = json.Number(raw)
	}

	n, err := ParseInteger(num)
	if err != nil {
		return 0, NewValidationError("sample_size", fmt.Sprintf("not an integer: %s", string(raw)))
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, NewValidationError("sample_size", fmt.Sprintf("out of range: %d", n))
	}
	return int(n), nil
}

// ParseInteger converts an integer-like JSON number ("7", "7.0") to int64
func ParseInteger(num json.Number) (int64, error) {
	if n, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f >= 0x1p63 || f < -0x1p63 {
		return 0, fmt.Errorf("%s is not integral", num)
	}
	return int64(f), nil
}

// CatalogItem is one entity of a category as listed by the catalog
type CatalogItem struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ItemDetail is the extended detail payload of a catalog item.
// Pointer fields distinguish an absent attribute from a zero value.
type ItemDetail struct {
	Stats     map[string]int
	Abilities []string
	Height    *int
	Weight    *int
}

// ReportRow is one enriched item. Every row carries the same columns.
type ReportRow struct {
	Name           string
	URL            string
	HP             string
	Attack         string
	Defense        string
	SpecialAttack  string
	SpecialDefense string
	Speed          string
	Abilities      string
	Height         string
	Weight         string
}

// Columns returns the report header in column order
func Columns() []string {
	return []string{
		"name", "url",
		"hp", "attack", "defense", "special-attack", "special-defense", "speed",
		"abilities", "height", "weight",
	}
}

// Values returns the row's cells in the order of Columns
func (r ReportRow) Values() []string {
	return []string{
		r.Name, r.URL,
		r.HP, r.Attack, r.Defense, r.SpecialAttack, r.SpecialDefense, r.Speed,
		r.Abilities, r.Height, r.Weight,
	}
}

// ReportName returns the blob name of a job's report for the given file extension
func ReportName(jobID int64, ext string) string {
	return fmt.Sprintf("%s%d.%s", ReportBlobPrefix, jobID, strings.TrimPrefix(ext, "."))
}
