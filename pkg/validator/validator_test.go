package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name   string  `json:"name" validate:"required"`
	Price  float64 `json:"price" validate:"gte=0"`
	Rating int     `json:"rating" validate:"min=1,max=5"`
	Image  string  `json:"image" validate:"omitempty,url"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(testPayload{Name: "Go za pocetnike", Price: 29.99, Rating: 4})
	assert.NoError(t, err)
}

func TestValidate_RequiredField(t *testing.T) {
	err := Validate(testPayload{Price: 10, Rating: 3})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields()["Name"])
	assert.Contains(t, verr.Error(), "field 'Name' is required")
}

func TestValidate_RangeTags(t *testing.T) {
	err := Validate(testPayload{Name: "x", Price: -1, Rating: 6})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := verr.Fields()
	assert.Equal(t, "must be greater than or equal to 0", fields["Price"])
	assert.Equal(t, "must be at most 5", fields["Rating"])
}

func TestValidate_URLTag(t *testing.T) {
	err := Validate(testPayload{Name: "x", Rating: 3, Image: "not a url"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a valid URL", verr.Fields()["Image"])
}

func TestValidate_MultipleErrorsJoined(t *testing.T) {
	err := Validate(testPayload{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "; ")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"name":"Go za pocetnike","price":29.99,"rating":5}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst testPayload
	err := DecodeAndValidate(req, &dst)
	require.NoError(t, err)
	assert.Equal(t, "Go za pocetnike", dst.Name)
	assert.Equal(t, 5, dst.Rating)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var dst testPayload
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_InvalidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price":10,"rating":3}`))

	var dst testPayload
	err := DecodeAndValidate(req, &dst)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "Name")
}
