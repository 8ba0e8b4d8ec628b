// Package suite registers the OrangeHRM regression scenarios.
package suite

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/config"
	"github.com/xkilldash9x/hrmcheck/internal/pages"
	"github.com/xkilldash9x/hrmcheck/internal/scenario"
)

// Texts the application shows on the terminal screens of each flow.
const (
	InvalidCredentialsText = "Invalid credentials"
	SavedBanner            = "Successfully Saved"
	UpdatedBanner          = "Successfully Updated"
	DeletedBanner          = "Successfully Deleted"
)

// Scenario names, in registration order.
const (
	ValidLogin     = "valid_login"
	InvalidLogin   = "invalid_login"
	AddEmployee    = "add_employee"
	EditEmployee   = "edit_employee"
	DeleteEmployee = "delete_employee"
)

// Data is everything the flows need besides a browser session.
type Data struct {
	Valid             schemas.Credential
	Invalid           schemas.Credential
	NewEmployee       schemas.Employee
	EditedEmployee    schemas.Employee
	DashboardFragment string
	Locators          pages.Locators
}

// DataFromConfig builds the flow data from a loaded configuration, applying
// any locator overrides.
func DataFromConfig(cfg *config.Config) (Data, error) {
	loc := pages.DefaultLocators()
	if len(cfg.Locators) > 0 {
		if err := loc.Override(cfg.Locators); err != nil {
			return Data{}, fmt.Errorf("invalid locator overrides: %w", err)
		}
	}
	return Data{
		Valid:             cfg.Credentials.Valid(),
		Invalid:           cfg.Credentials.Invalid(),
		NewEmployee:       cfg.Employees.Add,
		EditedEmployee:    cfg.Employees.Edit,
		DashboardFragment: cfg.Target.DashboardFragment,
		Locators:          loc,
	}, nil
}

// Scenarios returns the five flows in their fixed order.
func Scenarios(d Data) []scenario.Scenario {
	return []scenario.Scenario{
		{
			Name:        ValidLogin,
			Description: "Log in with valid credentials and land on the dashboard.",
			Run:         d.validLogin,
		},
		{
			Name:        InvalidLogin,
			Description: "Log in with a wrong password and see the credentials error.",
			Run:         d.invalidLogin,
		},
		{
			Name:        AddEmployee,
			Description: fmt.Sprintf("Add employee %s through PIM.", d.NewEmployee.FullName()),
			Run:         d.addEmployee,
		},
		{
			Name:        EditEmployee,
			Description: fmt.Sprintf("Rename the selected employee to %s.", d.EditedEmployee.FullName()),
			Run:         d.editEmployee,
		},
		{
			Name:        DeleteEmployee,
			Description: "Delete the selected employee and confirm the dialog.",
			Run:         d.deleteEmployee,
		},
	}
}

func (d Data) validLogin(ctx context.Context, env *scenario.Env) error {
	login := pages.NewLoginPage(env.Interactor, d.Locators)
	if err := login.Login(ctx, d.Valid); err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}
	u, err := login.WaitForDashboard(ctx, d.DashboardFragment)
	if err != nil {
		return err
	}
	env.Logger.Debug("Reached dashboard.", zap.String("url", u))
	return nil
}

func (d Data) invalidLogin(ctx context.Context, env *scenario.Env) error {
	login := pages.NewLoginPage(env.Interactor, d.Locators)
	if err := login.Login(ctx, d.Invalid); err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}
	msg, err := login.ErrorMessage(ctx)
	if err != nil {
		return err
	}
	if got := strings.TrimSpace(msg); got != InvalidCredentialsText {
		return scenario.Assertf("login error text equals", InvalidCredentialsText, got)
	}
	return nil
}

func (d Data) addEmployee(ctx context.Context, env *scenario.Env) error {
	pim, err := d.openPIM(ctx, env)
	if err != nil {
		return err
	}
	if err := pim.StartAdd(ctx); err != nil {
		return err
	}
	if err := pim.FillName(ctx, d.NewEmployee); err != nil {
		return err
	}
	if err := pim.Save(ctx); err != nil {
		return err
	}
	return expectBanner(ctx, pim, SavedBanner)
}

func (d Data) editEmployee(ctx context.Context, env *scenario.Env) error {
	pim, err := d.openPIM(ctx, env)
	if err != nil {
		return err
	}
	if err := pim.StartEdit(ctx); err != nil {
		return err
	}
	if err := pim.ReplaceName(ctx, d.EditedEmployee); err != nil {
		return err
	}
	if err := pim.Save(ctx); err != nil {
		return err
	}
	return expectBanner(ctx, pim, UpdatedBanner)
}

func (d Data) deleteEmployee(ctx context.Context, env *scenario.Env) error {
	pim, err := d.openPIM(ctx, env)
	if err != nil {
		return err
	}
	// Delete returns only once the confirmation dialog has closed.
	if err := pim.Delete(ctx); err != nil {
		return err
	}
	return expectBanner(ctx, pim, DeletedBanner)
}

// openPIM signs in with the valid credentials and opens the PIM module.
func (d Data) openPIM(ctx context.Context, env *scenario.Env) (*pages.PIMPage, error) {
	login := pages.NewLoginPage(env.Interactor, d.Locators)
	if err := login.Login(ctx, d.Valid); err != nil {
		return nil, fmt.Errorf("submitting login form: %w", err)
	}
	if _, err := login.WaitForDashboard(ctx, d.DashboardFragment); err != nil {
		return nil, err
	}
	pim := pages.NewPIMPage(env.Interactor, d.Locators)
	if err := pim.Open(ctx); err != nil {
		return nil, fmt.Errorf("opening PIM: %w", err)
	}
	return pim, nil
}

func expectBanner(ctx context.Context, pim *pages.PIMPage, want string) error {
	msg, err := pim.SuccessMessage(ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(msg, want) {
		return scenario.Assertf("success banner contains", want, strings.TrimSpace(msg))
	}
	return nil
}
