package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/waitingboard/api/internal/model"
	apperrors "github.com/waitingboard/api/pkg/errors"
)

const msgNoValidLocations = "None of the selected locations are valid"

// LocationResolver looks up known locations by exact name, preserving the
// order of names.
type LocationResolver interface {
	ResolveNames(ctx context.Context, names []string) ([]*model.Location, error)
}

// LocationValidation is the outcome of checking a requested location list.
type LocationValidation struct {
	Valid   []*model.Location
	Invalid []string
}

func (v *LocationValidation) IDs() []int64 {
	ids := make([]int64, len(v.Valid))
	for i, l := range v.Valid {
		ids[i] = l.ID
	}
	return ids
}

func (v *LocationValidation) Names() []string {
	names := make([]string, len(v.Valid))
	for i, l := range v.Valid {
		names[i] = l.Name
	}
	return names
}

// normalizeLocations trims candidates, drops blanks and keeps the first
// occurrence of each name.
func normalizeLocations(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		name := strings.TrimSpace(c)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ValidateLocations partitions candidates into known and unknown locations.
// It fails when no candidate is a known location.
func ValidateLocations(ctx context.Context, resolver LocationResolver, candidates []string) (*LocationValidation, error) {
	names := normalizeLocations(candidates)
	if len(names) == 0 {
		return nil, apperrors.Validation(msgNoValidLocations)
	}

	known, err := resolver.ResolveNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to validate locations: %w", err)
	}

	byName := make(map[string]*model.Location, len(known))
	for _, l := range known {
		byName[l.Name] = l
	}

	result := &LocationValidation{}
	for _, name := range names {
		if l, ok := byName[name]; ok {
			result.Valid = append(result.Valid, l)
		} else {
			result.Invalid = append(result.Invalid, name)
		}
	}

	if len(result.Valid) == 0 {
		return nil, apperrors.Validation(msgNoValidLocations)
	}
	return result, nil
}
