package query

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(rawQuery string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestValidatePageDefaults(t *testing.T) {
	page, err := ValidatePage(newContext(""))
	require.NoError(t, err)
	assert.Equal(t, &Page{Offset: 0, Limit: DefaultLimit, SortOrder: "desc"}, page)
}

func TestValidatePage(t *testing.T) {
	page, err := ValidatePage(newContext("offset=40&limit=10&sort-order=ASC"))
	require.NoError(t, err)
	assert.Equal(t, &Page{Offset: 40, Limit: 10, SortOrder: "asc"}, page)
}

func TestValidatePageRejectsBadValues(t *testing.T) {
	for _, rawQuery := range []string{"offset=-1", "limit=0", "limit=101", "limit=ten", "sort-order=sideways"} {
		t.Run(rawQuery, func(t *testing.T) {
			_, err := ValidatePage(newContext(rawQuery))
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestValidateIntQueryParamRequired(t *testing.T) {
	_, err := ValidateIntQueryParam(newContext(""), "count", nil)
	assert.Error(t, err)
}

func TestValidateDateQueryParam(t *testing.T) {
	fallback := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

	day, err := ValidateDateQueryParam(newContext(""), "date", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, day)

	day, err = ValidateDateQueryParam(newContext("date=2026-02-01"), "date", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = ValidateDateQueryParam(newContext("date=yesterday"), "date", fallback)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
