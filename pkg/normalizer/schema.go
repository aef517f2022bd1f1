// Package normalizer maps raw SDMX responses into the canonical long-format
// table shared by every dataflow.
package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
)

// Level selects how many canonical columns the output carries
type Level string

// Schema levels
const (
	LevelMinimal  Level = "minimal"
	LevelStandard Level = "standard"
	LevelExtended Level = "extended"
	LevelFull     Level = "full"
)

// Canonical column names, in declared output order
const (
	ColIso3           = "iso3"
	ColCountry        = "country"
	ColIndicator      = "indicator"
	ColPeriod         = "period"
	ColValue          = "value"
	ColSex            = "sex"
	ColAge            = "age"
	ColUnitMeasure    = "unit_measure"
	ColObsStatus      = "obs_status"
	ColWealthQuintile = "wealth_quintile"
	ColResidence      = "residence"
	ColMaternalEduLvl = "maternal_edu_lvl"
	ColDataSource     = "data_source"
	ColUnitMultiplier = "unit_multiplier"
	ColObsFootnote    = "obs_footnote"
)

//nolint:gochecknoglobals // Fixed column sets shared by all dataflows
var (
	minimalColumns  = []string{ColIso3, ColCountry, ColIndicator, ColPeriod, ColValue}
	standardColumns = append(append([]string{}, minimalColumns...), ColSex, ColAge, ColUnitMeasure, ColObsStatus)
	extendedColumns = append(append([]string{}, standardColumns...), ColWealthQuintile, ColResidence, ColMaternalEduLvl)
	fullColumns     = append(append([]string{}, extendedColumns...), ColDataSource, ColUnitMultiplier, ColObsFootnote)
)

// Columns returns the declared column set for a level, in fixed order.
// Identical for every dataflow at the same level (rectangular guarantee).
func (l Level) Columns() []string {
	var cols []string

	switch l {
	case LevelMinimal:
		cols = minimalColumns
	case LevelStandard:
		cols = standardColumns
	case LevelExtended:
		cols = extendedColumns
	case LevelFull:
		cols = fullColumns
	default:
		cols = standardColumns
	}

	return append([]string(nil), cols...)
}

// Valid reports whether the level is one of the declared schema levels
func (l Level) Valid() bool {
	switch l {
	case LevelMinimal, LevelStandard, LevelExtended, LevelFull:
		return true
	default:
		return false
	}
}

// Record is one normalized output row. Every declared column is always
// present: missing numerics are NaN, missing strings are empty. "Absent" is
// not a representable state.
type Record struct {
	Iso3           string
	Country        string
	Indicator      string
	Period         float64
	Value          float64
	Sex            string
	Age            string
	UnitMeasure    string
	ObsStatus      string
	WealthQuintile string
	Residence      string
	MaternalEduLvl string
	DataSource     string
	UnitMultiplier string
	ObsFootnote    string
}

// Field renders one canonical column of the record as a string; NaN numerics
// render empty.
func (r *Record) Field(column string) string {
	switch column {
	case ColIso3:
		return r.Iso3
	case ColCountry:
		return r.Country
	case ColIndicator:
		return r.Indicator
	case ColPeriod:
		return formatFloat(r.Period)
	case ColValue:
		return formatFloat(r.Value)
	case ColSex:
		return r.Sex
	case ColAge:
		return r.Age
	case ColUnitMeasure:
		return r.UnitMeasure
	case ColObsStatus:
		return r.ObsStatus
	case ColWealthQuintile:
		return r.WealthQuintile
	case ColResidence:
		return r.Residence
	case ColMaternalEduLvl:
		return r.MaternalEduLvl
	case ColDataSource:
		return r.DataSource
	case ColUnitMultiplier:
		return r.UnitMultiplier
	case ColObsFootnote:
		return r.ObsFootnote
	default:
		return ""
	}
}

// recordJSON is the wire shape of a Record. NaN is not representable in
// JSON, so missing numerics round-trip as null.
type recordJSON struct {
	Iso3           string   `json:"iso3"`
	Country        string   `json:"country"`
	Indicator      string   `json:"indicator"`
	Period         *float64 `json:"period"`
	Value          *float64 `json:"value"`
	Sex            string   `json:"sex"`
	Age            string   `json:"age"`
	UnitMeasure    string   `json:"unit_measure"`
	ObsStatus      string   `json:"obs_status"`
	WealthQuintile string   `json:"wealth_quintile"`
	Residence      string   `json:"residence"`
	MaternalEduLvl string   `json:"maternal_edu_lvl"`
	DataSource     string   `json:"data_source"`
	UnitMultiplier string   `json:"unit_multiplier"`
	ObsFootnote    string   `json:"obs_footnote"`
}

// MarshalJSON implements json.Marshaler
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Iso3:           r.Iso3,
		Country:        r.Country,
		Indicator:      r.Indicator,
		Period:         floatPtr(r.Period),
		Value:          floatPtr(r.Value),
		Sex:            r.Sex,
		Age:            r.Age,
		UnitMeasure:    r.UnitMeasure,
		ObsStatus:      r.ObsStatus,
		WealthQuintile: r.WealthQuintile,
		Residence:      r.Residence,
		MaternalEduLvl: r.MaternalEduLvl,
		DataSource:     r.DataSource,
		UnitMultiplier: r.UnitMultiplier,
		ObsFootnote:    r.ObsFootnote,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = Record{
		Iso3:           w.Iso3,
		Country:        w.Country,
		Indicator:      w.Indicator,
		Period:         floatValue(w.Period),
		Value:          floatValue(w.Value),
		Sex:            w.Sex,
		Age:            w.Age,
		UnitMeasure:    w.UnitMeasure,
		ObsStatus:      w.ObsStatus,
		WealthQuintile: w.WealthQuintile,
		Residence:      w.Residence,
		MaternalEduLvl: w.MaternalEduLvl,
		DataSource:     w.DataSource,
		UnitMultiplier: w.UnitMultiplier,
		ObsFootnote:    w.ObsFootnote,
	}

	return nil
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}

	return &v
}

func floatValue(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}

	return *v
}

// Table is the canonical normalized output
type Table struct {
	Level Level
	Rows  []Record
}

// Columns returns the table's declared columns in fixed order
func (t *Table) Columns() []string {
	return t.Level.Columns()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
