package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/model/timestamp"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Define a single validator to do all of the validations for us.
var v = validator.New()

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func invalid(name string, detail string) error {
	return apperr.Validation(
		fmt.Sprintf("invalid query parameter: %s: %s", name, detail),
		fmt.Sprintf("The %s parameter is not valid: %s.", name, detail),
	)
}

// ValidateIntQueryParam extracts an optional integer query parameter and validates it.
func ValidateIntQueryParam(ctx echo.Context, name string, defaultValue *int32, checks ...string) (int32, error) {
	value := ctx.QueryParam(name)
	var result int32

	// Assume that the parameter is required if there's no default.
	if defaultValue == nil && value == "" {
		return result, invalid(name, "a value is required")
	}

	// If no value was provided at this point then the parameter is optional; return the default value.
	if value == "" {
		return *defaultValue, nil
	}

	// Parse the parameter value.
	parsed, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return result, invalid(name, "it must be a whole number")
	}
	result = int32(parsed)

	// Perform any checks that we're supposed to perform.
	for _, check := range checks {
		if err = v.Var(result, check); err != nil {
			return result, invalid(name, fmt.Sprintf("it must satisfy %s", check))
		}
	}

	return result, nil
}

// contains returns true if the given slice of strings contains the given string.
func contains(strs []string, str string) bool {
	for _, s := range strs {
		if s == str {
			return true
		}
	}
	return false
}

// ValidateEnumQueryParam extracts the value of an enumeration query parameter. The value will always be converted to
// lower case before validating and returning it.
func ValidateEnumQueryParam(ctx echo.Context, name string, vals []string, defaultValue *string) (string, error) {
	value := strings.ToLower(ctx.QueryParam(name))

	// Assume that the value is required if there's no default.
	if defaultValue == nil && value == "" {
		return "", invalid(name, "a value is required")
	}

	// If no value was provided at this point then the parameter is optional; return the default value.
	if value == "" {
		return *defaultValue, nil
	}

	if !contains(vals, value) {
		return "", invalid(name, "valid values are "+strings.Join(vals, ", "))
	}
	return value, nil
}

// ValidateSortOrder extracts the value of a sort order query parameter and validates it. Listings are newest first
// unless the caller asks otherwise.
func ValidateSortOrder(ctx echo.Context) (string, error) {
	defaultSortOrder := "desc"
	return ValidateEnumQueryParam(ctx, "sort-order", []string{"asc", "desc"}, &defaultSortOrder)
}

// Page holds the paging and ordering parameters of a listing.
type Page struct {
	Offset    int
	Limit     int
	SortOrder string
}

// ValidatePage extracts the offset, limit and sort-order query parameters.
func ValidatePage(ctx echo.Context) (*Page, error) {
	defaultOffset := int32(0)
	offset, err := ValidateIntQueryParam(ctx, "offset", &defaultOffset, "gte=0")
	if err != nil {
		return nil, err
	}

	defaultLimit := int32(DefaultLimit)
	limit, err := ValidateIntQueryParam(ctx, "limit", &defaultLimit, "gte=1", fmt.Sprintf("lte=%d", MaxLimit))
	if err != nil {
		return nil, err
	}

	sortOrder, err := ValidateSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	return &Page{Offset: int(offset), Limit: int(limit), SortOrder: sortOrder}, nil
}

// ValidateDateQueryParam extracts an optional calendar date. The default is used if the parameter is absent.
func ValidateDateQueryParam(ctx echo.Context, name string, defaultValue time.Time) (time.Time, error) {
	value := ctx.QueryParam(name)
	if value == "" {
		return defaultValue, nil
	}

	day, err := timestamp.Parse(value)
	if err != nil {
		return time.Time{}, invalid(name, "use the YYYY-MM-DD format")
	}
	return day.Time(), nil
}
