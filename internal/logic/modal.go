package logic

import "charthub/internal/domain"

// Modal is the state of the repository form: ModalClosed, ModalCreate or
// ModalEdit.
type Modal interface {
	isModal()
}

// ModalClosed means no form is shown
type ModalClosed struct{}

// ModalCreate is the form for a new repository
type ModalCreate struct{}

// ModalEdit is the form for an existing repository
type ModalEdit struct {
	Repository domain.ChartRepository
}

func (ModalClosed) isModal() {}
func (ModalCreate) isModal() {}
func (ModalEdit) isModal() {}

// IsOpen reports whether m shows a form
func IsOpen(m Modal) bool {
	switch m.(type) {
	case ModalCreate, ModalEdit:
		return true
	}
	return false
}
