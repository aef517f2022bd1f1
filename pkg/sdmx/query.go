package sdmx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/unicef-drp/unicefdata/pkg/metadata"
)

// QuerySpec carries the caller's filters for one logical fetch. Constructed
// per call, never persisted.
type QuerySpec struct {
	Indicator string
	// Countries holds ISO3 codes; empty means all reporting countries
	Countries []string
	StartYear int
	EndYear   int
	// Filters constrains named dimensions to allowed code sets
	Filters map[string][]string
}

// Filtered reports whether the caller explicitly constrained the dimension
func (q *QuerySpec) Filtered(dimension string) bool {
	_, ok := q.Filters[dimension]
	return ok
}

// buildQueryURL renders the positional SDMX data query for one dataflow.
// Dimension order is fixed per dataflow: values are placed by position from
// the dataflow schema, an unconstrained dimension renders as an empty
// segment, a multi-value constraint is "+"-joined, and a dimension the
// dataflow does not carry is omitted entirely. Dimensions that support the
// "_T" aggregate and were not constrained default to "_T".
func buildQueryURL(baseURL string, schema *metadata.DataflowSchema, spec *QuerySpec, offset, pageSize int) (string, error) {
	segments := make([]string, 0, len(schema.Dimensions))

	for _, dim := range schema.Dimensions {
		switch dim {
		case "REF_AREA":
			segments = append(segments, strings.Join(spec.Countries, "+"))
		case "INDICATOR":
			segments = append(segments, spec.Indicator)
		default:
			if values, ok := spec.Filters[dim]; ok {
				segments = append(segments, strings.Join(values, "+"))
			} else if schema.SupportsTotal(dim) {
				segments = append(segments, "_T")
			} else {
				segments = append(segments, "")
			}
		}
	}

	u, err := url.Parse(fmt.Sprintf("%s/data/%s,%s,%s/%s",
		strings.TrimRight(baseURL, "/"),
		schema.Agency, schema.ID, schema.Version,
		strings.Join(segments, ".")))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}

	params := url.Values{}
	params.Set("format", "csv")
	params.Set("labels", "id")

	if spec.StartYear > 0 {
		params.Set("startPeriod", strconv.Itoa(spec.StartYear))
	}
	if spec.EndYear > 0 {
		params.Set("endPeriod", strconv.Itoa(spec.EndYear))
	}

	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}

	u.RawQuery = params.Encode()

	return u.String(), nil
}
