package normalizer

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordJSONMissingValueIsNull(t *testing.T) {
	rec := Record{Iso3: "KEN", Indicator: "CME_MRY0T4", Period: 2020.0, Value: math.NaN()}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value":null`)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsNaN(back.Value))
	assert.Equal(t, 2020.0, back.Period)
	assert.Equal(t, "KEN", back.Iso3)
}

func TestRecordField(t *testing.T) {
	rec := Record{Iso3: "KEN", Period: 2020.5, Value: math.NaN(), Sex: "_T"}

	assert.Equal(t, "KEN", rec.Field(ColIso3))
	assert.Equal(t, "2020.5", rec.Field(ColPeriod))
	assert.Equal(t, "", rec.Field(ColValue), "NaN renders empty")
	assert.Equal(t, "_T", rec.Field(ColSex))
	assert.Equal(t, "", rec.Field("no_such_column"))
}
