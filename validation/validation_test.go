package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("title", "  ", v)
	Required("desc", "x", v)
	assert.Equal(t, Violations{"title": "required"}, v)
	assert.False(t, v.Empty())
}

func TestRequiredList(t *testing.T) {
	v := Violations{}
	RequiredList("users", []string{"", " "}, v)
	assert.Equal(t, "required", v["users"])

	v = Violations{}
	RequiredList("users", []string{"a"}, v)
	assert.True(t, v.Empty())
}

func TestPositiveInt(t *testing.T) {
	v := Violations{}
	assert.Equal(t, 4, PositiveInt("total", " 4 ", v))
	assert.True(t, v.Empty())

	PositiveInt("total", "abc", v)
	assert.Equal(t, "not_a_number", v["total"])

	v = Violations{}
	PositiveInt("total", "0", v)
	assert.Equal(t, "must_be_positive", v["total"])
}

func TestDateNotBefore(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	v := Violations{}
	DateNotBefore("due", "2024-03-10", today, v)
	DateNotBefore("later", "2024-04-01", today, v)
	assert.True(t, v.Empty())

	DateNotBefore("due", "2024-03-09", today, v)
	DateNotBefore("bad", "10/03/2024", today, v)
	DateNotBefore("blank", "", today, v)
	assert.Equal(t, Violations{"due": "date_in_past", "bad": "invalid_date"}, v)
}

func TestEndNotBefore(t *testing.T) {
	v := Violations{}
	EndNotBefore("end", "2024-03-10", "2024-03-10", v)
	assert.True(t, v.Empty())
	EndNotBefore("end", "2024-03-10", "2024-03-01", v)
	assert.Equal(t, "end_before_start", v["end"])
}

func TestSubsetOf(t *testing.T) {
	known := map[string]bool{"p1": true, "p2": true}
	v := Violations{}
	SubsetOf("users", []string{"p1", "p2"}, known, v)
	assert.True(t, v.Empty())
	SubsetOf("users", []string{"p1", "zz"}, known, v)
	assert.Equal(t, "unknown_provider", v["users"])
}

func TestAddKeepsFirst(t *testing.T) {
	v := Violations{}
	v.Add("f", "required")
	v.Add("f", "invalid_date")
	assert.Equal(t, "required", v["f"])
}
