package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/validate"
)

const locateFailed = "Failed to fetch location details. Please enter manually."

type AddressService struct {
	api         *api.Client
	geocoderURL string
}

// NewAddressService reverse-geocodes against geocoderURL, a Nominatim
// compatible endpoint.
func NewAddressService(c *api.Client, geocoderURL string) *AddressService {
	return &AddressService{api: c, geocoderURL: geocoderURL}
}

func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	list, err := s.api.Addresses(ctx)
	if err != nil {
		return nil, fail(err, "Failed to load addresses")
	}
	return list, nil
}

func (s *AddressService) Create(ctx context.Context, form api.AddressForm) (models.Address, error) {
	if err := validate.Check(form); err != nil {
		return models.Address{}, invalid(err)
	}
	addr, err := s.api.CreateAddress(ctx, form)
	if err != nil {
		return models.Address{}, fail(err, "Failed to save address")
	}
	return addr, nil
}

// Locate pre-fills an address form from coordinates. Fields the geocoder
// does not know stay empty; state falls back to DefaultState.
func (s *AddressService) Locate(ctx context.Context, lat, lon float64) (api.AddressForm, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")

	resp, err := s.api.HTTP().
		Get(s.geocoderURL + "/reverse?" + q.Encode()).
		Header("User-Agent", "bookstore-client").
		WithContext(ctx).
		Send()
	if err == nil && !resp.OK() {
		err = fmt.Errorf("geocoder answered %d", resp.StatusCode)
	}
	if err == nil && !gjson.ValidBytes(resp.Raw) {
		err = fmt.Errorf("geocoder answered invalid JSON")
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("address: reverse geocoding failed", "error", err)
		return api.AddressForm{}, &Failure{Text: locateFailed, Err: err}
	}

	addr := gjson.GetBytes(resp.Raw, "address")
	if !addr.IsObject() {
		return api.AddressForm{}, &Failure{Text: locateFailed}
	}

	form := api.AddressForm{
		Village:  first(addr, "suburb", "village", "neighbourhood"),
		Mandal:   first(addr, "city_district", "town", "county"),
		District: first(addr, "city", "state_district"),
		State:    first(addr, "state"),
		Pincode:  first(addr, "postcode"),
	}
	if form.State == "" {
		form.State = api.DefaultState
	}
	return form, nil
}

func first(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := obj.Get(k).String(); v != "" {
			return v
		}
	}
	return ""
}
