package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"+254712345678", "+1 (555) 123-4567", "254 712 345 678"}
	for _, p := range valid {
		assert.True(t, ValidatePhone(p), p)
	}

	invalid := []string{"", "abc", "+", "+0712345678", "123456789012345678"}
	for _, p := range invalid {
		assert.False(t, ValidatePhone(p), p)
	}
}

func TestValidateVIN(t *testing.T) {
	assert.True(t, ValidateVIN("1HGCM82633A004352"))
	assert.True(t, ValidateVIN("jtdkb20u293519735"))
	// shorter chassis numbers on older imports
	assert.True(t, ValidateVIN("NZE12100123"))

	assert.False(t, ValidateVIN(""))
	assert.False(t, ValidateVIN("SHORT"))
	assert.False(t, ValidateVIN("1HGCM82633A0043521X")) // 19 chars
	assert.False(t, ValidateVIN("1HGCM82633AOI4352"))   // contains O and I
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("admin@premiummotors.co.ke"))
	assert.True(t, ValidateEmail("  john.doe+test@example.com  "))

	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail("@example.com"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "premium-motors", Slugify("Premium Motors"))
	assert.Equal(t, "citywheels", Slugify("  CityWheels!  "))
	assert.Equal(t, "auto-hub-2", Slugify("Auto Hub 2"))
	assert.Equal(t, "trailing", Slugify("-trailing-"))
	assert.Equal(t, "", Slugify("???"))
}
