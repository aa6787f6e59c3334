package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

func intPtr(v int) *int { return &v }

func TestEnrich(t *testing.T) {
	item := domain.CatalogItem{Name: "bulbasaur", URL: "https://catalog.test/pokemon/1/"}

	tests := []struct {
		name   string
		detail *domain.ItemDetail
		err    error
		want   domain.ReportRow
	}{
		{
			name: "full detail",
			detail: &domain.ItemDetail{
				Stats: map[string]int{
					"hp": 45, "attack": 49, "defense": 49,
					"special-attack": 65, "special-defense": 65, "speed": 45,
				},
				Abilities: []string{"overgrow", "chlorophyll"},
				Height:    intPtr(7),
				Weight:    intPtr(69),
			},
			want: domain.ReportRow{
				Name: item.Name, URL: item.URL,
				HP: "45", Attack: "49", Defense: "49",
				SpecialAttack: "65", SpecialDefense: "65", Speed: "45",
				Abilities: "overgrow, chlorophyll", Height: "7", Weight: "69",
			},
		},
		{
			name: "missing attributes use N/A",
			detail: &domain.ItemDetail{
				Stats:  map[string]int{"hp": 10},
				Height: intPtr(0),
			},
			want: domain.ReportRow{
				Name: item.Name, URL: item.URL,
				HP: "10", Attack: "N/A", Defense: "N/A",
				SpecialAttack: "N/A", SpecialDefense: "N/A", Speed: "N/A",
				Abilities: "N/A", Height: "0", Weight: "N/A",
			},
		},
		{
			name: "at most three abilities",
			detail: &domain.ItemDetail{
				Abilities: []string{"a", "b", "c", "d"},
			},
			want: domain.ReportRow{
				Name: item.Name, URL: item.URL,
				HP: "N/A", Attack: "N/A", Defense: "N/A",
				SpecialAttack: "N/A", SpecialDefense: "N/A", Speed: "N/A",
				Abilities: "a, b, c", Height: "N/A", Weight: "N/A",
			},
		},
		{
			name: "fetch error",
			err:  errors.New("boom"),
			want: errorRow(item),
		},
		{
			name: "nil detail",
			want: errorRow(item),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich(item, tt.detail, tt.err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got.Values(), len(domain.Columns()))
		})
	}
}

func TestErrorRow(t *testing.T) {
	row := errorRow(domain.CatalogItem{Name: "mew", URL: "u"})
	values := row.Values()

	assert.Equal(t, "mew", values[0])
	assert.Equal(t, "u", values[1])
	for _, v := range values[2:] {
		assert.Equal(t, domain.ErrorValue, v)
	}
}
