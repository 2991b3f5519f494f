package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,min=2"`
	Start string `validate:"required,clock"`
	Count int    `validate:"gte=1,lte=10"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Name: "Spa", Start: "09:00", Count: 2}))

	fields := Validate(sample{Name: "S", Start: "24:00", Count: 0})
	assert.Equal(t, map[string]string{"Name": "min", "Start": "clock", "Count": "gte"}, fields)
	assert.Equal(t, `invalid request: Count failed "gte", Name failed "min", Start failed "clock"`, Describe(fields))
}

func TestClockTag(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "23:59", "19:05"} {
		assert.Nil(t, Validate(sample{Name: "ok", Start: ok, Count: 1}), ok)
	}
	for _, bad := range []string{"9:30", "24:00", "12:60", "1230", "ab:cd"} {
		assert.NotNil(t, Validate(sample{Name: "ok", Start: bad, Count: 1}), bad)
	}
	assert.Equal(t, "", Describe(nil))
}

type booking struct {
	ServiceID int64  `json:"service_id" binding:"required"`
	Time      string `json:"booking_time" binding:"required,clock"`
	Note      string `json:"-" binding:"max=3"`
}

func TestFields_GinBinding(t *testing.T) {
	err := binding.Validator.ValidateStruct(&booking{Time: "25:00", Note: "long"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"service_id": "required", "booking_time": "clock", "Note": "max"}, Fields(err))

	assert.Nil(t, Fields(errors.New("unexpected EOF")))
	assert.NoError(t, binding.Validator.ValidateStruct(&booking{ServiceID: 1, Time: "09:30"}))
}
