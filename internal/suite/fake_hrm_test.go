package suite

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xkilldash9x/hrmcheck/internal/browser"
	"github.com/xkilldash9x/hrmcheck/internal/pages"
)

const (
	fakeLogin     = "http://hrm.test/web/index.php/auth/login"
	fakeDashboard = "http://hrm.test/web/index.php/dashboard/index"
	fakePIM       = "http://hrm.test/web/index.php/pim/viewEmployeeList"
)

// fakeHRM is an in-memory OrangeHRM that implements browser.Driver. It keeps
// just enough page state to walk the five flows.
type fakeHRM struct {
	mu  sync.Mutex
	loc pages.Locators

	url      string
	page     string // login, dashboard, pim, form
	fields   map[string]string
	loginErr bool
	dialog   bool
	banner   string
	editing  bool
	closed   bool

	// knobs
	validUser, validPass string
	bannerFor            map[string]string // overrides the banner after an action
	missing              map[browser.Locator]bool
	faults               map[browser.Locator]error
}

func newFakeHRM(loc pages.Locators) *fakeHRM {
	return &fakeHRM{
		loc:       loc,
		fields:    make(map[string]string),
		validUser: "Admin",
		validPass: "admin123",
		bannerFor: make(map[string]string),
		missing:   make(map[browser.Locator]bool),
		faults:    make(map[browser.Locator]error),
	}
}

var _ browser.Driver = (*fakeHRM)(nil)

func (f *fakeHRM) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
	f.page = "login"
	return nil
}

func (f *fakeHRM) CurrentURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

// visible reports which elements the current page shows.
func (f *fakeHRM) visible(loc browser.Locator) (present, shown bool) {
	if f.missing[loc] {
		return false, false
	}
	l := f.loc
	switch loc {
	case l.Username, l.Password, l.Submit:
		return f.page == "login", f.page == "login"
	case l.LoginError:
		return f.loginErr, f.loginErr
	case l.PIMMenu:
		return f.page != "login", f.page != "login"
	case l.AddButton, l.DeleteButton:
		return f.page == "pim", f.page == "pim" && !f.dialog
	case l.EditButton:
		return f.page == "pim" || f.page == "form", f.page == "pim" || f.page == "form"
	case l.FirstName, l.LastName, l.SaveButton:
		return f.page == "form", f.page == "form"
	case l.ConfirmDelete:
		// The dialog stays in the DOM once it has been opened.
		return f.page == "pim", f.page == "pim" && f.dialog
	case l.SuccessBanner:
		return f.banner != "", f.banner != ""
	}
	return false, false
}

func (f *fakeHRM) Probe(ctx context.Context, loc browser.Locator) (browser.ElementState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return browser.ElementState{}, browser.ErrSessionClosed
	}
	present, shown := f.visible(loc)
	return browser.ElementState{Present: present, Visible: shown, Enabled: present}, nil
}

func (f *fakeHRM) Click(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.faults[loc]; err != nil {
		return err
	}
	if _, shown := f.visible(loc); !shown {
		return fmt.Errorf("element %s is not interactable", loc)
	}
	l := f.loc
	switch loc {
	case l.Submit:
		if f.fields["username"] == f.validUser && f.fields["password"] == f.validPass {
			f.page, f.url = "dashboard", fakeDashboard
		} else {
			f.loginErr = true
		}
	case l.PIMMenu:
		f.page, f.url = "pim", fakePIM
		f.banner = ""
	case l.AddButton:
		f.page, f.editing = "form", false
		f.fields["first"], f.fields["last"] = "", ""
	case l.EditButton:
		f.page, f.editing = "form", true
		f.fields["first"], f.fields["last"] = "Linda", "Anderson"
	case l.SaveButton:
		f.page = "pim"
		f.banner = "Successfully Saved"
		if f.editing {
			f.banner = "Successfully Updated"
		}
		f.applyBanner("save")
	case l.DeleteButton:
		f.dialog = true
	case l.ConfirmDelete:
		f.dialog = false
		f.banner = "Successfully Deleted"
		f.applyBanner("delete")
	}
	return nil
}

func (f *fakeHRM) applyBanner(action string) {
	if b, ok := f.bannerFor[action]; ok {
		f.banner = b
	}
}

func (f *fakeHRM) key(loc browser.Locator) string {
	switch loc {
	case f.loc.Username:
		return "username"
	case f.loc.Password:
		return "password"
	case f.loc.FirstName:
		return "first"
	case f.loc.LastName:
		return "last"
	}
	return loc.String()
}

func (f *fakeHRM) SendKeys(ctx context.Context, loc browser.Locator, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.faults[loc]; err != nil {
		return err
	}
	f.fields[f.key(loc)] += text
	return nil
}

func (f *fakeHRM) Clear(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[f.key(loc)] = ""
	return nil
}

func (f *fakeHRM) Text(ctx context.Context, loc browser.Locator) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch loc {
	case f.loc.LoginError:
		return "Invalid credentials", nil
	case f.loc.SuccessBanner:
		return "\n  " + f.banner + "\n", nil
	}
	return strings.TrimSpace(f.fields[f.key(loc)]), nil
}

func (f *fakeHRM) Screenshot(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []byte("png:" + f.page), nil
}

func (f *fakeHRM) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// form returns the names currently typed into the employee form.
func (f *fakeHRM) form() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields["first"], f.fields["last"]
}

// fakeFactory hands out a fresh fakeHRM per session, configured by tweak.
type fakeFactory struct {
	loc      pages.Locators
	tweak    func(i int, f *fakeHRM)
	sessions []*fakeHRM
}

func (ff *fakeFactory) NewSession(ctx context.Context) (browser.Driver, error) {
	f := newFakeHRM(ff.loc)
	if ff.tweak != nil {
		ff.tweak(len(ff.sessions), f)
	}
	ff.sessions = append(ff.sessions, f)
	return f, nil
}
