package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword_Strong(t *testing.T) {
	ok, reasons := ValidatePassword("Str0ng!Pass")
	assert.True(t, ok)
	assert.Empty(t, reasons)
}

func TestValidatePassword_ReasonsAccumulate(t *testing.T) {
	ok, reasons := ValidatePassword("abc")
	assert.False(t, ok)
	assert.Contains(t, reasons, ReasonPasswordTooShort)
	assert.Contains(t, reasons, ReasonPasswordDigit)
	assert.Contains(t, reasons, ReasonPasswordSymbol)
	assert.Contains(t, reasons, ReasonPasswordCase)
}

func TestValidatePassword_Empty(t *testing.T) {
	ok, reasons := ValidatePassword("")
	assert.False(t, ok)
	assert.Equal(t, []string{ReasonPasswordEmpty}, reasons)
}

func TestValidatePassword_CommonWeak(t *testing.T) {
	// Case-insensitive membership in the deny set.
	ok, reasons := ValidatePassword("PassWord")
	assert.False(t, ok)
	assert.Contains(t, reasons, ReasonPasswordCommon)
}

func TestValidatePassword_IndividualRules(t *testing.T) {
	cases := []struct {
		password string
		want     string
	}{
		{"alllowercase1!", ReasonPasswordCase},
		{"NoDigits!!", ReasonPasswordDigit},
		{"NoSymbol123", ReasonPasswordSymbol},
		{"Sh0rt!", ReasonPasswordTooShort},
	}
	for _, tc := range cases {
		ok, reasons := ValidatePassword(tc.password)
		assert.False(t, ok, "password %q", tc.password)
		assert.Equal(t, []string{tc.want}, reasons, "password %q", tc.password)
	}
}
