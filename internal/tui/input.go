package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 200

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// formField is one labelled input of a multi-field form.
type formField struct {
	label  string
	value  string
	secret bool
}

// form is a tab-navigated set of text fields shared by the login, register
// and place forms.
type form struct {
	fields []formField
	focus  int
}

func newForm(fields ...formField) form {
	return form{fields: fields}
}

func (f *form) next() {
	f.focus = (f.focus + 1) % len(f.fields)
}

func (f *form) prev() {
	f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
}

// edit applies key to the focused field.
func (f *form) edit(key string) {
	f.fields[f.focus].value = editRune(f.fields[f.focus].value, key)
}

// value returns the trimmed value of field i.
func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].value)
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].value = ""
	}
	f.focus = 0
}

func (f form) View() string {
	width := 0
	for _, fld := range f.fields {
		if n := utf8.RuneCountInString(fld.label); n > width {
			width = n
		}
	}
	var sb strings.Builder
	for i, fld := range f.fields {
		label := fld.label + ":" + strings.Repeat(" ", width-utf8.RuneCountInString(fld.label))
		val := fld.value
		if fld.secret {
			val = strings.Repeat("•", utf8.RuneCountInString(val))
		}
		if i == f.focus {
			sb.WriteString("   " + accentStyle.Render(">") + " " + inputPromptStyle.Render(label) + " " + val + accentStyle.Render("_") + "\n")
		} else {
			sb.WriteString("     " + inputPromptStyle.Render(label) + " " + dimStyle.Render(val) + "\n")
		}
	}
	return sb.String()
}
