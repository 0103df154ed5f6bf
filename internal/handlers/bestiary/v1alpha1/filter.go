package v1alpha1

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
)

// Query parameters accepted by the monster list and random endpoints
const (
	paramName      = "name"
	paramMinCR     = "min_cr"
	paramMaxCR     = "max_cr"
	paramType      = "type"
	paramSize      = "size"
	paramAlignment = "alignment"
)

// parseFilter reads a FilterSpec from query parameters. Empty values are unset.
func parseFilter(q url.Values) (catalog.FilterSpec, error) {
	spec := catalog.FilterSpec{
		NameContains:      strings.TrimSpace(q.Get(paramName)),
		Type:              strings.TrimSpace(q.Get(paramType)),
		Size:              strings.TrimSpace(q.Get(paramSize)),
		AlignmentContains: strings.TrimSpace(q.Get(paramAlignment)),
	}

	vb := errors.NewValidationBuilder()
	spec.MinCR = parseCR(vb, paramMinCR, q.Get(paramMinCR))
	spec.MaxCR = parseCR(vb, paramMaxCR, q.Get(paramMaxCR))
	if err := vb.Build(); err != nil {
		return catalog.FilterSpec{}, err
	}

	return spec, nil
}

func parseCR(vb *errors.ValidationBuilder, field, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		vb.InvalidField(field, "must be a number")
		return nil
	}
	return catalog.CR(v)
}
