package normalizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/unicef-drp/unicefdata/pkg/metadata"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// Source column names recognized by the canonical rename table
const (
	srcRefArea        = "REF_AREA"
	srcCountryLabel   = "Geographic area"
	srcIndicator      = "INDICATOR"
	srcTimePeriod     = "TIME_PERIOD"
	srcObsValue       = "OBS_VALUE"
	srcSex            = "SEX"
	srcAge            = "AGE"
	srcUnitMeasure    = "UNIT_MEASURE"
	srcObsStatus      = "OBS_STATUS"
	srcWealthQuintile = "WEALTH_QUINTILE"
	srcResidence      = "RESIDENCE"
	srcMaternalEdu    = "MATERNAL_EDU_LVL"
	srcDataSource     = "DATA_SOURCE"
	srcUnitMultiplier = "UNIT_MULTIPLIER"
	srcObsFootnote    = "OBS_FOOTNOTE"
)

// totalCode is the SDMX aggregate code unconstrained dimensions default to
const totalCode = "_T"

// Normalize maps a raw dataflow response into the canonical table for the
// requested schema level. Deterministic and pure: the output column set and
// order depend only on the level, never on which dataflow answered.
//
// Rows on a totals-capable dimension the caller did not constrain are
// filtered to the "_T" aggregate, so an unfiltered query returns totals
// rather than a mix of disaggregations.
func Normalize(raw *sdmx.RawTable, schema *metadata.DataflowSchema, spec *sdmx.QuerySpec, level Level) *Table {
	table := &Table{Level: level}
	if raw == nil {
		return table
	}

	for _, row := range raw.Rows {
		if !passesTotalDefault(row, schema, spec) {
			continue
		}

		table.Rows = append(table.Rows, normalizeRow(row, spec))
	}

	return table
}

// passesTotalDefault applies the default "_T" filter: a dimension that
// supports totals and was not explicitly constrained keeps only its
// aggregate rows. Rows where the source omitted the dimension entirely pass
// through.
func passesTotalDefault(row sdmx.RawRecord, schema *metadata.DataflowSchema, spec *sdmx.QuerySpec) bool {
	for _, dim := range schema.DisaggregationsWithTotals {
		if spec != nil && spec.Filtered(dim) {
			continue
		}

		value, ok := row[dim]
		if !ok || value == "" {
			continue
		}

		if value != totalCode {
			return false
		}
	}

	return true
}

func normalizeRow(row sdmx.RawRecord, spec *sdmx.QuerySpec) Record {
	rec := Record{
		Iso3:           row[srcRefArea],
		Country:        row[srcCountryLabel],
		Indicator:      row[srcIndicator],
		Period:         PeriodToDecimalYear(row[srcTimePeriod]),
		Value:          parseValue(row[srcObsValue]),
		Sex:            row[srcSex],
		Age:            row[srcAge],
		UnitMeasure:    row[srcUnitMeasure],
		ObsStatus:      row[srcObsStatus],
		WealthQuintile: row[srcWealthQuintile],
		Residence:      row[srcResidence],
		MaternalEduLvl: row[srcMaternalEdu],
		DataSource:     row[srcDataSource],
		UnitMultiplier: row[srcUnitMultiplier],
		ObsFootnote:    row[srcObsFootnote],
	}

	// Some dataflows omit the indicator column when the key pinned it
	if rec.Indicator == "" && spec != nil {
		rec.Indicator = spec.Indicator
	}

	return rec
}

// PeriodToDecimalYear converts an SDMX time period to a decimal year.
// Integer years pass through as year.0; a month-qualified period YYYY-MM
// converts as year + month/12, so "2020-06" yields 2020.5. Anything else is
// NaN.
func PeriodToDecimalYear(period string) float64 {
	period = strings.TrimSpace(period)
	if period == "" {
		return math.NaN()
	}

	parts := strings.SplitN(period, "-", 3)

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return math.NaN()
	}

	if len(parts) == 1 {
		return float64(year)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return math.NaN()
	}

	return float64(year) + float64(month)/12
}

func parseValue(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN()
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}

	return value
}
