package api

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/unicef-drp/unicefdata/pkg/fetcher"
	"github.com/unicef-drp/unicefdata/pkg/metadata"
	"github.com/unicef-drp/unicefdata/pkg/normalizer"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// dimensionParams maps query parameter names to SDMX dimension filters
//
//nolint:gochecknoglobals // Fixed parameter mapping
var dimensionParams = map[string]string{
	"sex":              "SEX",
	"age":              "AGE",
	"wealth_quintile":  "WEALTH_QUINTILE",
	"residence":        "RESIDENCE",
	"maternal_edu_lvl": "MATERNAL_EDU_LVL",
}

// handlers serves the data and indicator endpoints
type handlers struct {
	fetcher fetcher.Service
	store   *metadata.Store
	log     logrus.FieldLogger
}

func newHandlers(fetcherService fetcher.Service, store *metadata.Store, log logrus.FieldLogger) *handlers {
	return &handlers{
		fetcher: fetcherService,
		store:   store,
		log:     log.WithField("component", "api.handlers"),
	}
}

// register mounts the handlers on the API group
func (h *handlers) register(group fiber.Router) {
	group.Get("/data/:indicator", h.getData)
	group.Get("/indicators", h.listIndicators)
	group.Get("/health", h.health)
}

// getData runs the full resolve/fetch/normalize pipeline for one indicator
func (h *handlers) getData(c fiber.Ctx) error {
	spec, level, err := parseDataRequest(c)
	if err != nil {
		return err
	}

	table, err := h.fetcher.FetchIndicator(c.Context(), spec, level)
	if err != nil {
		return mapFetchError(err)
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if renderErr := table.WriteCSV(&buf); renderErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, renderErr.Error())
		}

		c.Set(fiber.HeaderContentType, "text/csv")

		return c.Send(buf.Bytes())
	}

	return c.JSON(fiber.Map{
		"indicator": spec.Indicator,
		"level":     table.Level,
		"columns":   table.Columns(),
		"rows":      table.Rows,
	})
}

// listIndicators returns the indicator catalog, optionally filtered by a
// search term
func (h *handlers) listIndicators(c fiber.Ctx) error {
	var entries []metadata.IndicatorEntry

	if q := c.Query("q"); q != "" {
		entries = h.store.Search(q)
	} else {
		entries = h.store.Indicators()
	}

	type indicatorJSON struct {
		Code      string   `json:"code"`
		Name      string   `json:"name"`
		Dataflows []string `json:"dataflows,omitempty"`
		Tier      string   `json:"tier"`
	}

	out := make([]indicatorJSON, len(entries))
	for i, e := range entries {
		out[i] = indicatorJSON{Code: e.Code, Name: e.Name, Dataflows: e.Dataflows, Tier: string(e.Tier)}
	}

	return c.JSON(fiber.Map{"indicators": out, "count": len(out)})
}

func (h *handlers) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":             "ok",
		"metadata_degraded":  h.store.Degraded(),
		"metadata_generated": h.store.GeneratedAt(),
	})
}

func parseDataRequest(c fiber.Ctx) (*sdmx.QuerySpec, normalizer.Level, error) {
	spec := &sdmx.QuerySpec{Indicator: c.Params("indicator")}

	if countries := c.Query("countries"); countries != "" {
		spec.Countries = strings.Split(countries, ",")
	}

	var err error
	if spec.StartYear, err = intQuery(c, "start"); err != nil {
		return nil, "", err
	}
	if spec.EndYear, err = intQuery(c, "end"); err != nil {
		return nil, "", err
	}

	for param, dim := range dimensionParams {
		if value := c.Query(param); value != "" {
			if spec.Filters == nil {
				spec.Filters = map[string][]string{}
			}
			spec.Filters[dim] = strings.Split(value, ",")
		}
	}

	level := normalizer.Level(c.Query("level"))
	if c.Query("level") == "" {
		level = normalizer.LevelStandard
	} else if !level.Valid() {
		return nil, "", fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("invalid schema level %q", c.Query("level")))
	}

	return spec, level, nil
}

func intQuery(c fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s year %q", name, raw))
	}

	return value, nil
}

// mapFetchError translates pipeline errors into HTTP responses. The
// exhausted case keeps the tried-dataflow enumeration in the response body.
func mapFetchError(err error) error {
	var exhausted *fetcher.ExhaustedError
	if errors.As(err, &exhausted) {
		return fiber.NewError(fiber.StatusNotFound, exhausted.Error())
	}

	if errors.Is(err, fetcher.ErrFatalQuery) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return fiber.NewError(fiber.StatusBadGateway, err.Error())
}
