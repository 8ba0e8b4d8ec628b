package pages

import (
	"context"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/interaction"
)

// LoginPage is the OrangeHRM sign-in form.
type LoginPage struct {
	ix  *interaction.Interactor
	loc Locators
}

func NewLoginPage(ix *interaction.Interactor, loc Locators) *LoginPage {
	return &LoginPage{ix: ix, loc: loc}
}

// Login fills both fields and submits the form. It does not check the result.
func (p *LoginPage) Login(ctx context.Context, cred schemas.Credential) error {
	if err := p.ix.Fill(ctx, p.loc.Username, cred.Username); err != nil {
		return err
	}
	if err := p.ix.Fill(ctx, p.loc.Password, cred.Password); err != nil {
		return err
	}
	return p.ix.Click(ctx, p.loc.Submit)
}

// WaitForDashboard waits until the browser lands on a URL containing fragment.
func (p *LoginPage) WaitForDashboard(ctx context.Context, fragment string) (string, error) {
	return p.ix.WaitURLContains(ctx, fragment)
}

// ErrorMessage waits for the login error paragraph and returns its text.
func (p *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.ix.ReadText(ctx, p.loc.LoginError, interaction.Visible)
}
