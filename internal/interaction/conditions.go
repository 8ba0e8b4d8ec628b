package interaction

import (
	"fmt"

	"github.com/xkilldash9x/hrmcheck/internal/browser"
)

// Condition is a readiness predicate over an element snapshot.
type Condition int

const (
	// Present: the element exists in the DOM.
	Present Condition = iota
	// Visible: present and rendered with a non-empty box.
	Visible
	// Clickable: visible and not disabled.
	Clickable
	// Absent: no element matches.
	Absent
	// Hidden: absent, or present but not rendered. Modal dialogs that are
	// dismissed by toggling display satisfy Hidden but not Absent.
	Hidden
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Visible:
		return "visible"
	case Clickable:
		return "clickable"
	case Absent:
		return "absent"
	case Hidden:
		return "hidden"
	}
	return fmt.Sprintf("condition(%d)", int(c))
}

// Met reports whether st satisfies c.
func (c Condition) Met(st browser.ElementState) bool {
	switch c {
	case Present:
		return st.Present
	case Visible:
		return st.Present && st.Visible
	case Clickable:
		return st.Present && st.Visible && st.Enabled
	case Absent:
		return !st.Present
	case Hidden:
		return !st.Present || !st.Visible
	}
	return false
}

// Describe renders c applied to loc, e.g. "visible(name=username)".
func (c Condition) Describe(loc browser.Locator) string {
	return fmt.Sprintf("%s(%s)", c, loc)
}
