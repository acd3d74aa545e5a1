package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// modalKind identifies which management dialog is open.
type modalKind int

const (
	modalNone modalKind = iota
	modalAdd
	modalRename
	modalDelete
)

// formField is one labelled text input inside a modal form.
type formField struct {
	label string
	input textinput.Model
}

// form is a modal management dialog: labelled inputs for add/rename, a
// bare confirm for delete. While open it captures all keys.
type form struct {
	kind   modalKind
	title  string
	fields []formField
	focus  int
	errMsg string
	// target is the collection the rename/delete acts on.
	target string
}

func newField(label, placeholder, value string) formField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	in.CharLimit = 0
	in.Width = 36
	return formField{label: label, input: in}
}

// newAddForm builds the "add collection" dialog.
func newAddForm() form {
	f := form{
		kind:  modalAdd,
		title: "Add collection",
		fields: []formField{
			newField("Name", "my-docs", ""),
			newField("Path", "~/documents", ""),
			newField("Mask", "**/*.md", "**/*.md"),
		},
	}
	f.fields[0].input.Focus()
	return f
}

// newRenameForm builds the "rename collection" dialog.
func newRenameForm(target string) form {
	f := form{
		kind:   modalRename,
		title:  "Rename collection '" + target + "'",
		target: target,
		fields: []formField{
			newField("New name", target, ""),
		},
	}
	f.fields[0].input.Focus()
	return f
}

// newDeleteForm builds the "delete collection" confirm dialog.
func newDeleteForm(target string) form {
	return form{
		kind:   modalDelete,
		title:  "Delete collection '" + target + "'?",
		target: target,
	}
}

// validate checks required fields, returning false and setting errMsg on
// the first violation.
func (f *form) validate() bool {
	for i := range f.fields {
		if strings.TrimSpace(f.fields[i].input.Value()) == "" {
			f.errMsg = f.fields[i].label + " must not be empty"
			f.focus = i
			f.syncFocus()
			return false
		}
	}
	f.errMsg = ""
	return true
}

// value returns the trimmed value of field i.
func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) syncFocus() {
	for i := range f.fields {
		if i == f.focus {
			f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
}

// cycleFocus moves field focus by delta, wrapping.
func (f *form) cycleFocus(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.syncFocus()
}

// update forwards a key to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// render draws the dialog box.
func (f *form) render() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render(f.title))
	b.WriteString("\n")

	for i := range f.fields {
		b.WriteString(FieldNameStyle.Render(f.fields[i].label+": "))
		b.WriteString("\n")
		b.WriteString(f.fields[i].input.View())
		b.WriteString("\n")
	}

	if f.kind == modalDelete {
		b.WriteString("This removes the collection's documents from the index.\n\n")
		b.WriteString(ButtonDangerStyle.Render("enter: delete"))
		b.WriteString(ButtonStyle.Render("esc: cancel"))
	} else {
		b.WriteString("\n")
		b.WriteString(ButtonFocusedStyle.Render("enter: save"))
		b.WriteString(ButtonStyle.Render("esc: cancel"))
		if len(f.fields) > 1 {
			b.WriteString(HelpStyle.Render("  tab: next field"))
		}
	}

	if f.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(ModalErrorStyle.Render(f.errMsg))
	}

	return ModalStyle.Render(b.String())
}

// place centers the dialog in the available area.
func (f *form) place(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, f.render())
}
