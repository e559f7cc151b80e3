package httpapi

import (
	"html/template"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
	"github.com/MarkoPoloResearchLab/watchlaunch/pkg/footer"
)

const (
	footerElementID       = "site-footer"
	footerBaseClass       = "site-footer"
	footerInnerClass      = "site-footer__inner"
	footerBrandClass      = "site-footer__brand"
	footerLinkClass       = "site-footer__link"
	footerThemeToggleID   = "themeToggle"
	footerThemeToggleCSS  = "theme-toggle"
	footerThemeAriaLabel  = "Toggle theme"
	footerBrandTextSuffix = " © 2025"
)

var footerLinks = []footer.Link{
	{Label: "Launch", URL: LandingPagePath},
	{Label: "Dashboard", URL: DashboardPagePath},
}

func renderPageFooter(brandName string, activeTheme theme.Theme) (template.HTML, error) {
	return footer.Render(footer.Config{
		ElementID:        footerElementID,
		BaseClass:        footerBaseClass,
		InnerClass:       footerInnerClass,
		BrandClass:       footerBrandClass,
		BrandText:        brandName + footerBrandTextSuffix,
		LinkClass:        footerLinkClass,
		Links:            footerLinks,
		ThemeToggleID:    footerThemeToggleID,
		ThemeToggleClass: footerThemeToggleCSS,
		ThemeIconClass:   activeTheme.Icon(),
		ThemeAriaLabel:   footerThemeAriaLabel,
	})
}
