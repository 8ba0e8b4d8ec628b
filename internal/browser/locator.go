// internal/browser/locator.go
package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// Strategy names how a Locator's value is interpreted.
type Strategy string

const (
	ByID    Strategy = "id"
	ByName  Strategy = "name"
	ByXPath Strategy = "xpath"
	ByCSS   Strategy = "css"
)

// Valid reports whether s is a supported strategy.
func (s Strategy) Valid() bool {
	switch s {
	case ByID, ByName, ByXPath, ByCSS:
		return true
	}
	return false
}

// Locator identifies a single element on the page. Locators are immutable
// values and safe to share.
type Locator struct {
	By    Strategy
	Value string
}

// ID, Name, XPath and CSS build locators for the matching strategy.
func ID(v string) Locator    { return Locator{By: ByID, Value: v} }
func Name(v string) Locator  { return Locator{By: ByName, Value: v} }
func XPath(v string) Locator { return Locator{By: ByXPath, Value: v} }
func CSS(v string) Locator   { return Locator{By: ByCSS, Value: v} }

// String renders the locator in the same "by=value" form ParseLocator accepts.
func (l Locator) String() string {
	return string(l.By) + "=" + l.Value
}

// Validate rejects unknown strategies and empty values.
func (l Locator) Validate() error {
	if !l.By.Valid() {
		return fmt.Errorf("unsupported locator strategy %q", l.By)
	}
	if strings.TrimSpace(l.Value) == "" {
		return fmt.Errorf("locator %q has an empty value", l.By)
	}
	return nil
}

// ParseLocator parses "by=value", e.g. "xpath=//button[@type='submit']".
// Only the first '=' separates the strategy, so values may contain '='.
func ParseLocator(s string) (Locator, error) {
	by, value, ok := strings.Cut(s, "=")
	if !ok {
		return Locator{}, fmt.Errorf("locator %q must have the form by=value", s)
	}
	loc := Locator{By: Strategy(strings.ToLower(strings.TrimSpace(by))), Value: value}
	if err := loc.Validate(); err != nil {
		return Locator{}, err
	}
	return loc, nil
}

// selector converts the locator into a chromedp selector and query option.
func (l Locator) selector() (string, chromedp.QueryOption) {
	switch l.By {
	case ByID:
		return l.Value, chromedp.ByID
	case ByName:
		return "[name=" + cssString(l.Value) + "]", chromedp.ByQuery
	case ByXPath:
		return l.Value, chromedp.BySearch
	default:
		return l.Value, chromedp.ByQuery
	}
}

// cssString renders v as a double-quoted CSS string. Control characters use
// CSS hex escapes, which end in a space, and NUL becomes U+FFFD.
func cssString(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 2)
	b.WriteByte('"')
	for _, r := range v {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
