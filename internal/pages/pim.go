package pages

import (
	"context"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/interaction"
)

// PIMPage covers the employee list and the employee form of the PIM module.
type PIMPage struct {
	ix  *interaction.Interactor
	loc Locators
}

func NewPIMPage(ix *interaction.Interactor, loc Locators) *PIMPage {
	return &PIMPage{ix: ix, loc: loc}
}

// Open navigates to the PIM module through the main menu.
func (p *PIMPage) Open(ctx context.Context) error {
	return p.ix.Click(ctx, p.loc.PIMMenu)
}

// StartAdd opens the add-employee form.
func (p *PIMPage) StartAdd(ctx context.Context) error {
	return p.ix.Click(ctx, p.loc.AddButton)
}

// StartEdit switches the employee form into edit mode.
func (p *PIMPage) StartEdit(ctx context.Context) error {
	return p.ix.Click(ctx, p.loc.EditButton)
}

// FillName types the employee's names into empty fields.
func (p *PIMPage) FillName(ctx context.Context, e schemas.Employee) error {
	if err := p.ix.Fill(ctx, p.loc.FirstName, e.FirstName); err != nil {
		return err
	}
	return p.ix.Fill(ctx, p.loc.LastName, e.LastName)
}

// ReplaceName clears both name fields before typing.
func (p *PIMPage) ReplaceName(ctx context.Context, e schemas.Employee) error {
	if err := p.ix.Replace(ctx, p.loc.FirstName, e.FirstName); err != nil {
		return err
	}
	return p.ix.Replace(ctx, p.loc.LastName, e.LastName)
}

// Save submits the employee form.
func (p *PIMPage) Save(ctx context.Context) error {
	return p.ix.Click(ctx, p.loc.SaveButton)
}

// Delete asks to delete the selected records and confirms the dialog. It
// returns once the confirmation dialog is no longer shown.
func (p *PIMPage) Delete(ctx context.Context) error {
	if err := p.ix.Click(ctx, p.loc.DeleteButton); err != nil {
		return err
	}
	if err := p.ix.Click(ctx, p.loc.ConfirmDelete); err != nil {
		return err
	}
	return p.ix.WaitHidden(ctx, p.loc.ConfirmDelete)
}

// SuccessMessage waits for the green banner and returns its text.
func (p *PIMPage) SuccessMessage(ctx context.Context) (string, error) {
	return p.ix.ReadText(ctx, p.loc.SuccessBanner, interaction.Visible)
}
