// Package device derives coarse browser/OS/form-factor metadata from a
// User-Agent header. Purely informational, never security-relevant.
package device

import "strings"

type Browser string

const (
	BrowserChrome  Browser = "Chrome"
	BrowserFirefox Browser = "Firefox"
	BrowserSafari  Browser = "Safari"
	BrowserEdge    Browser = "Edge"
	BrowserUnknown Browser = "Unknown"
)

type OS string

const (
	OSWindows OS = "Windows"
	OSMacOS   OS = "MacOS"
	OSLinux   OS = "Linux"
	OSAndroid OS = "Android"
	OSIOS     OS = "iOS"
	OSUnknown OS = "Unknown"
)

type FormFactor string

const (
	FormDesktop FormFactor = "Desktop"
	FormMobile  FormFactor = "Mobile"
	FormTablet  FormFactor = "Tablet"
)

type Info struct {
	Browser Browser
	OS      OS
	Form    FormFactor
}

// Parse classifies a User-Agent string. Approximate matching is fine here;
// order matters because Chrome UAs contain "Safari" and Edge UAs contain both.
func Parse(userAgent string) Info {
	ua := strings.ToLower(userAgent)

	info := Info{
		Browser: BrowserUnknown,
		OS:      OSUnknown,
		Form:    FormDesktop,
	}

	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge/"):
		info.Browser = BrowserEdge
	case strings.Contains(ua, "firefox/"):
		info.Browser = BrowserFirefox
	case strings.Contains(ua, "chrome/") || strings.Contains(ua, "crios/"):
		info.Browser = BrowserChrome
	case strings.Contains(ua, "safari/"):
		info.Browser = BrowserSafari
	}

	switch {
	case strings.Contains(ua, "android"):
		info.OS = OSAndroid
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod"):
		info.OS = OSIOS
	case strings.Contains(ua, "windows"):
		info.OS = OSWindows
	case strings.Contains(ua, "mac os x") || strings.Contains(ua, "macintosh"):
		info.OS = OSMacOS
	case strings.Contains(ua, "linux"):
		info.OS = OSLinux
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		info.Form = FormTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") ||
		(info.OS == OSAndroid && !strings.Contains(ua, "tablet")):
		info.Form = FormMobile
	}

	return info
}
