package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBannerFull(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0", DefaultBannerOptions())
	out := buf.String()
	assert.Contains(t, out, "declarative architectural rule engine")
	assert.Contains(t, out, "Version: 0.1.0")
	assert.Contains(t, out, "License: AGPL-3.0")
}

func TestPrintBannerSections(t *testing.T) {
	tests := []struct {
		name        string
		opts        BannerOptions
		wantVersion bool
		wantLicense bool
	}{
		{"version only", BannerOptions{ShowVersion: true}, true, false},
		{"license only", BannerOptions{ShowLicense: true}, false, true},
		{"all off", BannerOptions{}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintBanner(&buf, "0.1.0", tt.opts)
			out := buf.String()
			assert.Equal(t, tt.wantVersion, strings.Contains(out, "Version: 0.1.0"))
			assert.Equal(t, tt.wantLicense, strings.Contains(out, "AGPL-3.0"))
			assert.NotContains(t, out, "_", "logo suppressed when ShowBanner is false")
		})
	}
}

func TestPrintBannerNilWriter(t *testing.T) {
	assert.NotPanics(t, func() {
		PrintBanner(nil, "0.1.0", DefaultBannerOptions())
	})
}

func TestGetASCIILogo(t *testing.T) {
	logo := GetASCIILogo()
	assert.NotEmpty(t, logo)
	assert.True(t, strings.ContainsAny(logo, `_|/\`), "expected figlet-style art, got %q", logo)
}

func TestGetCompactBanner(t *testing.T) {
	assert.Equal(t,
		"archrules v0.1.0 | declarative architectural rule engine",
		GetCompactBanner("0.1.0"))
	assert.Equal(t,
		"archrules vdev | declarative architectural rule engine",
		GetCompactBanner("dev"))
}

func TestShouldShowBanner(t *testing.T) {
	assert.True(t, ShouldShowBanner(true, false))
	assert.False(t, ShouldShowBanner(true, true))
	assert.False(t, ShouldShowBanner(false, false))
	assert.False(t, ShouldShowBanner(false, true))
}
