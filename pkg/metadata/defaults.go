package metadata

// defaultSnapshot returns the built-in minimal tables used when the synced
// metadata file is missing or unreadable. It covers the highest-traffic
// dataflows only; resolution for anything else falls through to the universal
// dataflow.
func defaultSnapshot() *Snapshot {
	return &Snapshot{
		Version: supportedVersion,
		Indicators: map[string]IndicatorEntry{
			"CME_MRY0T4": {
				Name:            "Under-five mortality rate",
				Dataflows:       []string{"CME"},
				Tier:            TierVerified,
				Disaggregations: []string{"SEX"},
			},
			"CME_MRM0": {
				Name:            "Neonatal mortality rate",
				Dataflows:       []string{"CME"},
				Tier:            TierVerified,
				Disaggregations: []string{"SEX"},
			},
			"NT_ANT_HAZ_NE2": {
				Name:            "Height-for-age <-2 SD (stunting)",
				Dataflows:       []string{"NUTRITION"},
				Tier:            TierVerified,
				Disaggregations: []string{"SEX", "AGE", "WEALTH_QUINTILE", "RESIDENCE"},
			},
			"IM_DTP3": {
				Name:            "Percentage of surviving infants who received the third dose of DTP-containing vaccine",
				Dataflows:       []string{"IMMUNISATION"},
				Tier:            TierVerified,
				Disaggregations: nil,
			},
		},
		Fallbacks: map[string][]string{
			"CME": {"CME", UniversalDataflow},
			"NT":  {"NUTRITION", UniversalDataflow},
			"IM":  {"IMMUNISATION", UniversalDataflow},
			"ED":  {"EDUCATION", UniversalDataflow},
			"PT":  {"PT", UniversalDataflow},
			"WS":  {"WASH_HOUSEHOLDS", UniversalDataflow},
			"HVA": {"HIV_AIDS", UniversalDataflow},
		},
		Dataflows: map[string]DataflowSchema{
			UniversalDataflow: {
				Agency:                    "UNICEF",
				Version:                   "1.0",
				Dimensions:                []string{"REF_AREA", "INDICATOR", "SEX"},
				DisaggregationsWithTotals: []string{"SEX"},
			},
			"CME": {
				Agency:                    "UNICEF",
				Version:                   "1.0",
				Dimensions:                []string{"REF_AREA", "INDICATOR", "SEX"},
				DisaggregationsWithTotals: []string{"SEX"},
			},
			"NUTRITION": {
				Agency:                    "UNICEF",
				Version:                   "1.0",
				Dimensions:                []string{"REF_AREA", "INDICATOR", "SEX", "AGE", "WEALTH_QUINTILE", "RESIDENCE"},
				DisaggregationsWithTotals: []string{"SEX", "WEALTH_QUINTILE", "RESIDENCE"},
			},
			"IMMUNISATION": {
				Agency:     "UNICEF",
				Version:    "1.0",
				Dimensions: []string{"REF_AREA", "INDICATOR"},
			},
			"EDUCATION": {
				Agency:                    "UNICEF",
				Version:                   "1.0",
				Dimensions:                []string{"REF_AREA", "INDICATOR", "SEX", "AGE", "WEALTH_QUINTILE", "RESIDENCE"},
				DisaggregationsWithTotals: []string{"SEX", "WEALTH_QUINTILE", "RESIDENCE"},
			},
		},
	}
}
