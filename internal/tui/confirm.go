package tui

import "github.com/charmbracelet/huh"

// ConfirmDelete asks before a note is deleted. An aborted prompt counts as no.
func ConfirmDelete(preview string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Deseja apagar essa nota?").
				Description(preview).
				Affirmative("Apagar").
				Negative("Cancelar").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}
