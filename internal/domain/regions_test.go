package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionName(t *testing.T) {
	name, ok := RegionName("GA")
	assert.True(t, ok)
	assert.Equal(t, "Galicia", name)

	name, ok = RegionName(" md ")
	assert.True(t, ok)
	assert.Equal(t, "Madrid", name)

	_, ok = RegionName("ZZ")
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Castilla-La Mancha", DisplayName("CM"))
	assert.Equal(t, "ZZ", DisplayName("ZZ"))
}

func TestRegionCodeFromDescription(t *testing.T) {
	tests := []struct {
		desc   string
		want   string
		wantOK bool
	}{
		{"01 Andalucía", "AN", true},
		{"02 Aragón", "AR", true},
		{"03 Asturias, Principado de", "AS", true},
		{"04 Balears, Illes", "IB", true},
		{"07 Castilla y León", "CL", true},
		{"08 Castilla - La Mancha", "CM", true},
		{"09 Cataluña", "CT", true},
		{"10 Comunitat Valenciana", "VC", true},
		{"13 Madrid, Comunidad de", "MD", true},
		{"14 Murcia, Región de", "MC", true},
		{"15 Navarra, Comunidad Foral de", "NC", true},
		{"16 País Vasco", "PV", true},
		{"17 Rioja, La", "RI", true},
		{"18 Ceuta", "CE", true},
		{"19 Melilla", "ML", true},
		{"12 Galiza", "GA", true},
		{"Total Nacional", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, ok := RegionCodeFromDescription(tt.desc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegionCodesRoundTripNames(t *testing.T) {
	for _, r := range regions {
		code, ok := RegionCodeFromDescription(r.ine + " " + r.name)
		assert.True(t, ok, r.name)
		assert.Equal(t, r.code, code, r.name)
	}
}
