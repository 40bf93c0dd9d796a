package gosms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSMSValid(t *testing.T) {
	got, err := NormalizeSMS("+14155552671")
	assert.NoError(t, err)
	assert.Equal(t, "+14155552671", got)
}

func TestNormalizeSMSRejectsEmpty(t *testing.T) {
	_, err := NormalizeSMS("")
	assert.Error(t, err)
}

func TestNormalizeSMSRejectsMissingPlus(t *testing.T) {
	_, err := NormalizeSMS("14155552671")
	assert.Error(t, err)
}

func TestNormalizeSMSRejectsGarbage(t *testing.T) {
	_, err := NormalizeSMS("+123")
	assert.Error(t, err)
}
