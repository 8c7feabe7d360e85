package gst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tallyflow/internal/gst"
)

func TestCanonicalState(t *testing.T) {
	assert.Equal(t, "HARYANA", gst.CanonicalState("  haryana "))
	assert.Equal(t, "UTTAR PRADESH", gst.CanonicalState("Uttar   Pradesh"))
	assert.Equal(t, "DELHI", gst.CanonicalState("07"))
	assert.Equal(t, "", gst.CanonicalState(""))
}

func TestStateFromGSTIN(t *testing.T) {
	assert.Equal(t, "HARYANA", gst.StateFromGSTIN("06ABCDE1234F1Z5"))
	assert.Equal(t, "", gst.StateFromGSTIN("99XXXXX0000X0X0"))
	assert.Equal(t, "", gst.StateFromGSTIN("0"))
}

func TestStateAbbreviation(t *testing.T) {
	assert.Equal(t, "HR", gst.StateAbbreviation("Haryana"))
	assert.Equal(t, "AP", gst.StateAbbreviation("ANDHRA PRADESH"))
	// Unknown states fall back to the first two letters.
	assert.Equal(t, "NA", gst.StateAbbreviation("Narnia"))
	assert.Equal(t, "XX", gst.StateAbbreviation(""))
}
