// internal/browser/probe.go
package browser

import (
	"encoding/json"
	"fmt"
)

// probeJS locates one element and reports its state in a single evaluation.
// It reads layout and attributes only, so it is safe to call in a poll loop.
const probeJS = `(function(by, value) {
  var el = null;
  try {
    switch (by) {
    case "id":
      el = document.getElementById(value);
      break;
    case "name":
      el = document.getElementsByName(value)[0] || null;
      break;
    case "xpath":
      el = document.evaluate(value, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
      break;
    default:
      el = document.querySelector(value);
    }
  } catch (e) {
    return {present: false, visible: false, enabled: false, text: "", error: String(e)};
  }
  if (!el) {
    return {present: false, visible: false, enabled: false, text: "", error: ""};
  }
  var style = window.getComputedStyle(el);
  var rect = el.getBoundingClientRect();
  var visible = style.display !== "none" && style.visibility !== "hidden" &&
    parseFloat(style.opacity || "1") > 0 && rect.width > 0 && rect.height > 0;
  var enabled = !el.disabled && el.getAttribute("aria-disabled") !== "true" &&
    style.pointerEvents !== "none";
  var text = (el.innerText !== undefined ? el.innerText : el.textContent) || "";
  return {present: true, visible: visible, enabled: enabled, text: text.trim(), error: ""};
})(%s, %s)`

type probeResult struct {
	Present bool   `json:"present"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
	Error   string `json:"error"`
}

func (r probeResult) state() ElementState {
	return ElementState{Present: r.Present, Visible: r.Visible, Enabled: r.Enabled, Text: r.Text}
}

// probeExpression renders probeJS for loc. Arguments are JSON-encoded so
// arbitrary locator values cannot break out of the string literals.
func probeExpression(loc Locator) (string, error) {
	by, err := json.Marshal(string(loc.By))
	if err != nil {
		return "", err
	}
	value, err := json.Marshal(loc.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(probeJS, by, value), nil
}
