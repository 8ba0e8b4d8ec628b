package suite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/config"
	"github.com/xkilldash9x/hrmcheck/internal/interaction"
	"github.com/xkilldash9x/hrmcheck/internal/scenario"
)

func testData(t *testing.T) Data {
	t.Helper()
	d, err := DataFromConfig(config.NewDefaultConfig())
	require.NoError(t, err)
	return d
}

func runSuite(t *testing.T, d Data, tweak func(i int, f *fakeHRM)) (*schemas.Run, *fakeFactory) {
	t.Helper()
	ff := &fakeFactory{loc: d.Locators, tweak: tweak}
	r := scenario.NewRunner(ff, scenario.Options{
		TargetURL:   fakeLogin,
		Wait:        interaction.Options{Timeout: 150 * time.Millisecond, PollInterval: 10 * time.Millisecond},
		Screenshots: true,
	}, zaptest.NewLogger(t))
	return r.Run(context.Background(), Scenarios(d)), ff
}

func statuses(run *schemas.Run) map[string]schemas.Status {
	m := make(map[string]schemas.Status, len(run.Outcomes))
	for _, o := range run.Outcomes {
		m[o.Scenario] = o.Status
	}
	return m
}

func TestScenarioOrder(t *testing.T) {
	got := scenario.Names(Scenarios(testData(t)))
	want := []string{ValidLogin, InvalidLogin, AddEmployee, EditEmployee, DeleteEmployee}
	assert.Equal(t, want, got)
}

func TestDataFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Locators = map[string]string{"pim_save": "css=button.save"}

	d, err := DataFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, schemas.Credential{Username: "Admin", Password: "admin123"}, d.Valid)
	assert.Equal(t, schemas.Credential{Username: "Admin", Password: "InvalidPassword"}, d.Invalid)
	assert.Equal(t, schemas.Employee{FirstName: "David", LastName: "Selvaraj"}, d.NewEmployee)
	assert.Equal(t, schemas.Employee{FirstName: "John", LastName: "Doe"}, d.EditedEmployee)
	assert.Equal(t, "dashboard", d.DashboardFragment)
	assert.Equal(t, "css=button.save", d.Locators.SaveButton.String())

	cfg.Locators = map[string]string{"pim_unknown": "id=x"}
	_, err = DataFromConfig(cfg)
	assert.Error(t, err)
}

func TestSuiteAllPass(t *testing.T) {
	d := testData(t)
	run, ff := runSuite(t, d, nil)

	want := []schemas.Outcome{
		{Scenario: ValidLogin, Status: schemas.StatusPass},
		{Scenario: InvalidLogin, Status: schemas.StatusPass},
		{Scenario: AddEmployee, Status: schemas.StatusPass},
		{Scenario: EditEmployee, Status: schemas.StatusPass},
		{Scenario: DeleteEmployee, Status: schemas.StatusPass},
	}
	opts := cmpopts.IgnoreFields(schemas.Outcome{}, "Description", "StartedAt", "Duration")
	if diff := cmp.Diff(want, run.Outcomes, opts); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, run.Passed())

	// One fresh session per scenario, all released.
	require.Len(t, ff.sessions, 5)
	for _, s := range ff.sessions {
		assert.True(t, s.closed)
	}

	first, last := ff.sessions[2].form()
	assert.Equal(t, "David", first)
	assert.Equal(t, "Selvaraj", last)
	first, last = ff.sessions[3].form()
	assert.Equal(t, "John", first, "edit replaces, not appends")
	assert.Equal(t, "Doe", last)
}

func TestSuiteFailures(t *testing.T) {
	d := testData(t)

	t.Run("wrong banner fails edit with the assertion", func(t *testing.T) {
		run, _ := runSuite(t, d, func(i int, f *fakeHRM) {
			f.bannerFor["save"] = "Successfully Saved"
		})
		got := statuses(run)
		assert.Equal(t, schemas.StatusPass, got[AddEmployee])
		assert.Equal(t, schemas.StatusFail, got[EditEmployee])

		edit := run.Outcomes[3]
		assert.Equal(t, "success banner contains", edit.Condition)
		assert.Contains(t, edit.Message, UpdatedBanner)
		assert.Equal(t, []byte("png:pim"), edit.Screenshot)
	})

	t.Run("rejected login fails on the dashboard condition", func(t *testing.T) {
		run, _ := runSuite(t, d, func(i int, f *fakeHRM) {
			f.validPass = "rotated"
		})
		got := statuses(run)
		assert.Equal(t, schemas.StatusFail, got[ValidLogin])
		assert.Equal(t, schemas.StatusPass, got[InvalidLogin])
		assert.Equal(t, `url contains "dashboard"`, run.Outcomes[0].Condition)
		assert.Equal(t, schemas.StatusFail, got[AddEmployee])
	})

	t.Run("accepted invalid password fails invalid_login", func(t *testing.T) {
		run, _ := runSuite(t, d, func(i int, f *fakeHRM) {
			f.validPass = "InvalidPassword"
		})
		out := run.Outcomes[1]
		assert.Equal(t, schemas.StatusFail, out.Status)
		assert.Equal(t, "visible(xpath=//p[contains(text(),'Invalid credentials')])", out.Condition)
	})

	t.Run("missing element times out", func(t *testing.T) {
		run, _ := runSuite(t, d, func(i int, f *fakeHRM) {
			f.missing[d.Locators.AddButton] = true
		})
		out := run.Outcomes[2]
		assert.Equal(t, schemas.StatusFail, out.Status)
		assert.Equal(t, "clickable(id=btnAdd)", out.Condition)
	})

	t.Run("driver fault is an error", func(t *testing.T) {
		run, _ := runSuite(t, d, func(i int, f *fakeHRM) {
			f.faults[d.Locators.ConfirmDelete] = errors.New("websocket closed")
		})
		out := run.Outcomes[4]
		assert.Equal(t, schemas.StatusError, out.Status)
		assert.Equal(t, "click(id=dialogDeleteBtn)", out.Condition)
		assert.Contains(t, out.Message, "websocket closed")
	})

	t.Run("delete without the banner fails", func(t *testing.T) {
		run, _ := runSuite(t, d, func(i int, f *fakeHRM) {
			f.bannerFor["delete"] = "Record in use"
		})
		out := run.Outcomes[4]
		assert.Equal(t, schemas.StatusFail, out.Status)
		assert.Contains(t, out.Message, DeletedBanner)
	})
}
