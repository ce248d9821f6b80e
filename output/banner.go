package output

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

const tagline = "declarative architectural rule engine"

// BannerOptions selects which parts of the startup banner are printed.
type BannerOptions struct {
	ShowBanner  bool
	ShowVersion bool
	ShowLicense bool
}

// DefaultBannerOptions enables every banner section.
func DefaultBannerOptions() BannerOptions {
	return BannerOptions{ShowBanner: true, ShowVersion: true, ShowLicense: true}
}

// PrintBanner writes the startup banner to w. With ShowBanner unset the
// ASCII logo and tagline are skipped and only the version/license lines
// remain.
func PrintBanner(w io.Writer, version string, opts BannerOptions) {
	if w == nil {
		return
	}
	if opts.ShowBanner {
		fmt.Fprintln(w, GetASCIILogo())
		fmt.Fprintln(w, tagline)
	}
	if opts.ShowVersion {
		fmt.Fprintf(w, "Version: %s\n", version)
	}
	if opts.ShowLicense {
		fmt.Fprintln(w, "License: AGPL-3.0")
	}
	fmt.Fprintln(w)
}

// GetASCIILogo renders the "ArchRules" logo with go-figure's standard font.
func GetASCIILogo() string {
	return figure.NewFigure("ArchRules", "standard", true).String()
}

// GetCompactBanner returns the single-line banner used for non-TTY output.
func GetCompactBanner(version string) string {
	return fmt.Sprintf("archrules v%s | %s", version, tagline)
}

// ShouldShowBanner reports whether the full banner should be printed:
// only on a terminal, and never when --no-banner is set.
func ShouldShowBanner(isTTY bool, noBannerFlag bool) bool {
	return isTTY && !noBannerFlag
}
