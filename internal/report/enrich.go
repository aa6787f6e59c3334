package report

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// Enrich maps one item and the outcome of its detail fetch to a report row.
// A failed or empty fetch yields a row whose enrichable fields are all "Error".
func Enrich(item domain.CatalogItem, detail *domain.ItemDetail, err error) domain.ReportRow {
	if err != nil || detail == nil {
		return errorRow(item)
	}

	return domain.ReportRow{
		Name:           item.Name,
		URL:            item.URL,
		HP:             statValue(detail.Stats, "hp"),
		Attack:         statValue(detail.Stats, "attack"),
		Defense:        statValue(detail.Stats, "defense"),
		SpecialAttack:  statValue(detail.Stats, "special-attack"),
		SpecialDefense: statValue(detail.Stats, "special-defense"),
		Speed:          statValue(detail.Stats, "speed"),
		Abilities:      abilitiesValue(detail.Abilities),
		Height:         optionalInt(detail.Height),
		Weight:         optionalInt(detail.Weight),
	}
}

func errorRow(item domain.CatalogItem) domain.ReportRow {
	return domain.ReportRow{
		Name:           item.Name,
		URL:            item.URL,
		HP:             domain.ErrorValue,
		Attack:         domain.ErrorValue,
		Defense:        domain.ErrorValue,
		SpecialAttack:  domain.ErrorValue,
		SpecialDefense: domain.ErrorValue,
		Speed:          domain.ErrorValue,
		Abilities:      domain.ErrorValue,
		Height:         domain.ErrorValue,
		Weight:         domain.ErrorValue,
	}
}

func statValue(stats map[string]int, name string) string {
	v, ok := stats[name]
	if !ok {
		return domain.NotAvailable
	}
	return strconv.Itoa(v)
}

func abilitiesValue(abilities []string) string {
	names := make([]string, 0, domain.MaxAbilities)
	for _, a := range abilities {
		if a == "" {
			continue
		}
		names = append(names, a)
		if len(names) == domain.MaxAbilities {
			break
		}
	}
	if len(names) == 0 {
		return domain.NotAvailable
	}
	return strings.Join(names, ", ")
}

func optionalInt(v *int) string {
	if v == nil {
		return domain.NotAvailable
	}
	return strconv.Itoa(*v)
}

// enrichAll fetches detail for each item serially. Per-item failures degrade
// that row only; a cancelled context aborts the batch.
func (p *Pipeline) enrichAll(ctx context.Context, logger *slog.Logger, items []domain.CatalogItem) ([]domain.ReportRow, error) {
	rows := make([]domain.ReportRow, 0, len(items))
	failed := 0

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		detail, err := p.catalog.GetDetail(ctx, item.URL)
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		if err == nil && detail == nil {
			err = errors.New("empty detail payload")
		}
		if err != nil {
			failed++
			logger.Error("Failed to enrich item",
				slog.String("item", item.Name),
				slog.Any("error", &domain.ItemEnrichmentError{Item: item.Name, Err: err}),
			)
		}

		rows = append(rows, Enrich(item, detail, err))
	}

	logger.Info("Enrichment finished",
		slog.Int("items", len(items)),
		slog.Int("failed", failed),
	)

	return rows, nil
}
