package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", contentType("Hospitalized_sp.png"))
	assert.Equal(t, "text/csv; charset=windows-1252", contentType("serie_historica_acumulados.csv"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType("Summary.xlsx"))
	assert.Equal(t, "application/octet-stream", contentType("README"))
}
