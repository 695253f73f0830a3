package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

// ProductInput is a product create/update payload after decoding. A nil field
// was not supplied.
type ProductInput struct {
	ProductID   *string
	ProductName *string
	Category    *string
	Brand       *string
	Price       *float64
	IsInStock   *bool
	ImageURL    *string
	Tags        *[]string

	City    *string
	State   *string
	Country *string

	Dimensions *string
	Material   *string
	Warranty   *string
}

// ParseStock accepts a JSON boolean or the strings a checkbox or query can carry.
func ParseStock(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "on", "true", "1", "yes":
			return true, nil
		case "off", "false", "0", "no", "":
			return false, nil
		}
	case nil:
		return false, nil
	}
	return false, fmt.Errorf("must be a boolean")
}

// ParseTags accepts a comma-joined string or a list of strings. Tags are
// trimmed, empties dropped, order kept.
func ParseTags(v any) ([]string, error) {
	out := []string{}
	add := func(s string) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	switch t := v.(type) {
	case nil:
	case string:
		add(t)
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be a list of strings")
			}
			add(s)
		}
	default:
		return nil, fmt.Errorf("must be a string or a list of strings")
	}
	return out, nil
}

// ParsePrice accepts finite JSON numbers and numeric strings.
func ParsePrice(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		err = errNotNumber
	}
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errNotNumber
	}
	return f, nil
}

var errNotNumber = errors.New("must be a number")

// ProductInputFromMap decodes a loosely typed body. Type mismatches come back
// as field errors.
func ProductInputFromMap(raw map[string]any) (ProductInput, []FieldError) {
	var (
		in   ProductInput
		errs []FieldError
	)

	str := func(field string, v any) *string {
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			return &s
		case nil:
			s := ""
			return &s
		}
		errs = append(errs, FieldError{Field: field, Message: "must be a string"})
		return nil
	}
	lookup := func(key string) (any, bool) {
		v, ok := raw[key]
		return v, ok
	}
	nested := func(parent, key, flat string) (any, bool) {
		if m, ok := raw[parent].(map[string]any); ok {
			if v, ok := m[key]; ok {
				return v, true
			}
		}
		return lookup(flat)
	}

	if v, ok := lookup("product_id"); ok {
		in.ProductID = str("product_id", v)
	}
	if v, ok := lookup("product_name"); ok {
		in.ProductName = str("product_name", v)
	} else if v, ok := lookup("name"); ok {
		in.ProductName = str("product_name", v)
	}
	if v, ok := lookup("category"); ok {
		in.Category = str("category", v)
	}
	if v, ok := lookup("brand"); ok {
		in.Brand = str("brand", v)
	}
	if v, ok := lookup("image_url"); ok {
		in.ImageURL = str("image_url", v)
	}
	if v, ok := lookup("price"); ok {
		if p, err := ParsePrice(v); err != nil {
			errs = append(errs, FieldError{Field: "price", Message: err.Error()})
		} else {
			in.Price = &p
		}
	}
	if v, ok := lookup("is_in_stock"); ok {
		if b, err := ParseStock(v); err != nil {
			errs = append(errs, FieldError{Field: "is_in_stock", Message: err.Error()})
		} else {
			in.IsInStock = &b
		}
	}
	if v, ok := lookup("tags"); ok {
		if tags, err := ParseTags(v); err != nil {
			errs = append(errs, FieldError{Field: "tags", Message: err.Error()})
		} else {
			in.Tags = &tags
		}
	}

	if v, ok := nested("location", "city", "location_city"); ok {
		in.City = str("location.city", v)
	}
	if v, ok := nested("location", "state", "location_state"); ok {
		in.State = str("location.state", v)
	}
	if v, ok := nested("location", "country", "location_country"); ok {
		in.Country = str("location.country", v)
	}
	if v, ok := nested("productDetails", "dimensions", "details_dimensions"); ok {
		in.Dimensions = str("productDetails.dimensions", v)
	}
	if v, ok := nested("productDetails", "material", "details_material"); ok {
		in.Material = str("productDetails.material", v)
	}
	if v, ok := nested("productDetails", "warranty", "details_warranty"); ok {
		in.Warranty = str("productDetails.warranty", v)
	}

	return in, errs
}

// ProductInputFromForm decodes an HTML form. An unchecked stock box is not
// submitted at all, so absence means false.
func ProductInputFromForm(form url.Values) (ProductInput, []FieldError) {
	raw := make(map[string]any, len(form))
	for key, values := range form {
		if len(values) == 0 || key == "_method" || key == "csrf_token" {
			continue
		}
		if key == "tags" && len(values) > 1 {
			raw[key] = values
			continue
		}
		raw[key] = values[0]
	}

	in, errs := ProductInputFromMap(raw)
	if in.IsInStock == nil {
		f := false
		in.IsInStock = &f
	}
	return in, errs
}

// Validate checks present fields. Unless partial, name, category and price
// must be present.
func (in ProductInput) Validate(partial bool) []FieldError {
	var errs []FieldError
	check := func(field string, value any, tag string) {
		if fe := validateVar(field, value, tag); fe != nil {
			errs = append(errs, *fe)
		}
	}
	require := func(field string, present bool) {
		if !partial && !present {
			errs = append(errs, FieldError{Field: field, Message: "is required"})
		}
	}

	require("product_name", in.ProductName != nil)
	require("category", in.Category != nil)
	require("price", in.Price != nil)

	if in.ProductID != nil {
		check("product_id", *in.ProductID, "max=64")
	}
	if in.ProductName != nil {
		check("product_name", *in.ProductName, "required,max=200")
	}
	if in.Category != nil {
		check("category", *in.Category, "required,max=100")
	}
	if in.Brand != nil {
		check("brand", *in.Brand, "max=100")
	}
	if in.Price != nil {
		check("price", *in.Price, "gte=0")
	}
	if in.ImageURL != nil {
		check("image_url", *in.ImageURL, "max=2048")
	}
	if in.Tags != nil {
		check("tags", *in.Tags, "max=50,dive,max=50")
	}
	optional := []struct {
		field string
		value *string
	}{
		{"location.city", in.City},
		{"location.state", in.State},
		{"location.country", in.Country},
		{"productDetails.dimensions", in.Dimensions},
		{"productDetails.material", in.Material},
		{"productDetails.warranty", in.Warranty},
	}
	for _, o := range optional {
		if o.value != nil {
			check(o.field, *o.value, "max=200")
		}
	}
	return errs
}

// NewProduct builds a product with defaults for anything not supplied.
func (in ProductInput) NewProduct() models.Product {
	p := models.Product{
		IsInStock: true,
		ImageURL:  models.DefaultImageURL,
		Tags:      []string{},
	}
	in.Apply(&p)
	if p.ProductID == "" {
		p.ProductID = NewProductID()
	}
	return p
}

// Apply copies supplied fields onto p.
func (in ProductInput) Apply(p *models.Product) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	if in.ProductID != nil && *in.ProductID != "" {
		p.ProductID = *in.ProductID
	}
	setStr(&p.ProductName, in.ProductName)
	setStr(&p.Category, in.Category)
	setStr(&p.Brand, in.Brand)
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.IsInStock != nil {
		p.IsInStock = *in.IsInStock
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
		if p.ImageURL == "" {
			p.ImageURL = models.DefaultImageURL
		}
	}
	if in.Tags != nil {
		p.Tags = append([]string{}, (*in.Tags)...)
	}
	setStr(&p.Location.City, in.City)
	setStr(&p.Location.State, in.State)
	setStr(&p.Location.Country, in.Country)
	setStr(&p.Details.Dimensions, in.Dimensions)
	setStr(&p.Details.Material, in.Material)
	setStr(&p.Details.Warranty, in.Warranty)
}

func NewProductID() string {
	return "RET-" + uuid.NewString()
}
