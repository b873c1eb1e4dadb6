package services

import (
	"html/template"
	"io"
	"strings"

	"deeplinkqr/internal/entities"
)

// RedirectStrategy is what the engine decided to send back for a scan.
type RedirectStrategy int

const (
	// StrategySmartPage serves an HTML page that tries the app intent and
	// falls back to the web URL after a timeout. Android only: a server-side
	// redirect to a custom scheme often fails silently there.
	StrategySmartPage RedirectStrategy = iota
	// StrategyDeepLink is a direct redirect to the deep-link URI, relying on
	// OS-level universal-link interception (iOS).
	StrategyDeepLink
	// StrategyFallback is a direct redirect to the fallback URL.
	StrategyFallback
)

// smartPageTimeoutMS is how long the intent attempt gets before the page
// navigates to the fallback URL on its own.
const smartPageTimeoutMS = 2500

const smartPageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<p>Opening app&hellip;</p>
<p><a href="{{.FallbackURL}}">Continue in browser</a></p>
<script>
(function () {
	var start = Date.now();
	setTimeout(function () {
		// If the app handled the intent the page is hidden, or the timer
		// fired late after the tab was suspended. Either way, stay put.
		if (document.hidden || Date.now() - start > {{.TimeoutMS}} + 1500) {
			return;
		}
		window.location.href = {{.FallbackURL}};
	}, {{.TimeoutMS}});
	window.location.href = {{.IntentURL}};
})();
</script>
</body>
</html>
`

type smartPageData struct {
	Title       string
	IntentURL   string
	FallbackURL string
	TimeoutMS   int
}

type RedirectService struct {
	tmpl *template.Template
}

func NewRedirectService() *RedirectService {
	return &RedirectService{
		tmpl: template.Must(template.New("smart_redirect").Parse(smartPageHTML)),
	}
}

// Select is total over the closed DeviceType enum: every device type maps
// to exactly one strategy. Anything invalid gets the permissive fallback.
func (s *RedirectService) Select(d entities.DeviceType) RedirectStrategy {
	switch d {
	case entities.DeviceAndroid:
		return StrategySmartPage
	case entities.DeviceIOS:
		return StrategyDeepLink
	case entities.DeviceMobileOther, entities.DeviceDesktop:
		return StrategyFallback
	default:
		return StrategyFallback
	}
}

// RenderSmartPage writes the app-intent HTML for a link.
func (s *RedirectService) RenderSmartPage(w io.Writer, link *entities.Link) error {
	return s.tmpl.Execute(w, smartPageData{
		Title:       link.Title,
		IntentURL:   IntentURL(link),
		FallbackURL: link.FallbackURL,
		TimeoutMS:   smartPageTimeoutMS,
	})
}

// IntentURL builds the Android intent:// form of a link's deep link, with
// the fallback URL embedded so Chrome can bail out without the timer.
func IntentURL(link *entities.Link) string {
	path := strings.TrimPrefix(link.DeepLink, link.AppScheme+"://")

	var b strings.Builder
	b.WriteString("intent://")
	b.WriteString(path)
	b.WriteString("#Intent;scheme=")
	b.WriteString(link.AppScheme)
	b.WriteString(";package=")
	b.WriteString(link.AppPackage)
	b.WriteString(";S.browser_fallback_url=")
	b.WriteString(template.URLQueryEscaper(link.FallbackURL))
	b.WriteString(";end")
	return b.String()
}
