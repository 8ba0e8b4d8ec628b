// Package pages holds the page objects for the OrangeHRM screens the suite
// drives. Each page owns its locators; flows never build selectors inline.
package pages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xkilldash9x/hrmcheck/internal/browser"
)

// Locators is the full set of element locators used by the page objects.
type Locators struct {
	Username   browser.Locator
	Password   browser.Locator
	Submit     browser.Locator
	LoginError browser.Locator

	PIMMenu       browser.Locator
	AddButton     browser.Locator
	FirstName     browser.Locator
	LastName      browser.Locator
	SaveButton    browser.Locator
	EditButton    browser.Locator
	DeleteButton  browser.Locator
	ConfirmDelete browser.Locator
	SuccessBanner browser.Locator
}

// DefaultLocators returns the locators for the stock OrangeHRM markup.
func DefaultLocators() Locators {
	return Locators{
		Username:   browser.Name("username"),
		Password:   browser.Name("password"),
		Submit:     browser.XPath("//button[@type='submit']"),
		LoginError: browser.XPath("//p[contains(text(),'Invalid credentials')]"),

		PIMMenu:       browser.ID("menu_pim_viewPimModule"),
		AddButton:     browser.ID("btnAdd"),
		FirstName:     browser.ID("firstName"),
		LastName:      browser.ID("lastName"),
		SaveButton:    browser.ID("btnSave"),
		EditButton:    browser.ID("btnEdit"),
		DeleteButton:  browser.ID("btnDelete"),
		ConfirmDelete: browser.ID("dialogDeleteBtn"),
		SuccessBanner: browser.XPath("//div[@class='message success fadable']"),
	}
}

func (l *Locators) byKey() map[string]*browser.Locator {
	return map[string]*browser.Locator{
		"login_username": &l.Username,
		"login_password": &l.Password,
		"login_submit":   &l.Submit,
		"login_error":    &l.LoginError,
		"pim_menu":       &l.PIMMenu,
		"pim_add":        &l.AddButton,
		"pim_first_name": &l.FirstName,
		"pim_last_name":  &l.LastName,
		"pim_save":       &l.SaveButton,
		"pim_edit":       &l.EditButton,
		"pim_delete":     &l.DeleteButton,
		"pim_confirm":    &l.ConfirmDelete,
		"pim_banner":     &l.SuccessBanner,
	}
}

// Keys lists the names accepted by Override, sorted.
func (l Locators) Keys() []string {
	keys := make([]string, 0, 16)
	for k := range l.byKey() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Override replaces locators by key. Unknown keys and malformed values are
// rejected and leave l unchanged.
func (l *Locators) Override(overrides map[string]string) error {
	next := *l
	targets := next.byKey()
	for key, raw := range overrides {
		dst, ok := targets[strings.ToLower(key)]
		if !ok {
			return fmt.Errorf("unknown locator key %q (known: %s)", key, strings.Join(l.Keys(), ", "))
		}
		loc, err := browser.ParseLocator(raw)
		if err != nil {
			return fmt.Errorf("locator %q: %w", key, err)
		}
		*dst = loc
	}
	*l = next
	return nil
}
