package model

import (
	"encoding/json"
	"errors"
	"strings"
)

// LocationSeparator splits and joins location names on the wire.
const LocationSeparator = ","

var ErrInvalidLocationList = errors.New("locations must be a comma-separated string or an array of names")

// Provider is a clinician shown on the waiting board.
type Provider struct {
	ID          int64              `db:"id" json:"id"`
	FirstName   string             `db:"first_name" json:"firstName"`
	LastName    string             `db:"last_name" json:"lastName"`
	Specialty   string             `db:"specialty" json:"specialty"`
	Title       string             `db:"title" json:"title"`
	WaitTime    *int               `db:"wait_time" json:"waitTime"`
	LastChanged *Timestamp         `db:"last_changed" json:"lastChanged"`
	Deleted     bool               `db:"deleted" json:"deleted"`
	CreatedAt   Timestamp          `db:"created_at" json:"createdAt"`
	UpdatedAt   Timestamp          `db:"updated_at" json:"updatedAt"`
	Locations   []ProviderLocation `db:"-" json:"locations"`
}

// LocationNames returns the assigned location names in assignment order.
func (p *Provider) LocationNames() []string {
	names := make([]string, 0, len(p.Locations))
	for _, l := range p.Locations {
		names = append(names, l.Name)
	}
	return names
}

// ProviderLocation is one row of the provider/location association.
type ProviderLocation struct {
	ProviderID int64  `db:"provider_id" json:"-"`
	ID         int64  `db:"location_id" json:"id"`
	Name       string `db:"name" json:"name"`
}

// LocationList accepts either "A,B" or ["A","B"] on input.
type LocationList []string

func (l *LocationList) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		*l = ParseLocationList(v)
	case []interface{}:
		names := make(LocationList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return ErrInvalidLocationList
			}
			names = append(names, s)
		}
		*l = names
	default:
		return ErrInvalidLocationList
	}
	return nil
}

// ParseLocationList splits a comma-separated list without trimming.
func ParseLocationList(s string) LocationList {
	if s == "" {
		return LocationList{}
	}
	return strings.Split(s, LocationSeparator)
}

func (l LocationList) String() string {
	return strings.Join(l, LocationSeparator)
}

// ProviderFilter narrows provider listings to one location.
type ProviderFilter struct {
	LocationID   *int64
	LocationName string
}

type CreateProviderRequest struct {
	FirstName string       `json:"firstName" binding:"required,notblank"`
	LastName  string       `json:"lastName" binding:"required,notblank"`
	Specialty string       `json:"specialty" binding:"required,notblank"`
	Title     string       `json:"title" binding:"required,notblank"`
	Locations LocationList `json:"locations" binding:"required"`
}

// CreateProviderResult carries the persisted provider and which requested
// locations were accepted or dropped.
type CreateProviderResult struct {
	Provider *Provider
	Accepted []string
	Dropped  []string
}

type CreateProviderResponse struct {
	Message          string    `json:"message"`
	Locations        string    `json:"locations"`
	DroppedLocations []string  `json:"droppedLocations"`
	Provider         *Provider `json:"provider"`
}

// UpdateProviderRequest holds the fields a partial update may touch.
// A nil field is left unchanged.
type UpdateProviderRequest struct {
	FirstName *string       `json:"firstName"`
	LastName  *string       `json:"lastName"`
	Specialty *string       `json:"specialty"`
	Title     *string       `json:"title"`
	Locations *LocationList `json:"locations"`
}

func (r *UpdateProviderRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Specialty == nil &&
		r.Title == nil && r.Locations == nil
}

// ProviderChanges is the column-level view of an update, keyed by column name.
type ProviderChanges map[string]interface{}

type WaitTimeRequest struct {
	WaitTime *int `json:"waitTime" binding:"required,min=0"`
}
