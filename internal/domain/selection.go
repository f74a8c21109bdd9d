package domain

// Selection is the tri-state selection flag on a quote. A freshly created
// quote is Undetermined until either auto-selection or an explicit select
// touches it.
type Selection string

const (
	Selected     Selection = "selected"
	NotSelected  Selection = "not_selected"
	Undetermined Selection = "undetermined"
)

func (s Selection) IsSelected() bool { return s == Selected }

// Bool maps the selection to its nullable-boolean storage form,
// NULL meaning Undetermined.
func (s Selection) Bool() *bool {
	switch s {
	case Selected:
		v := true
		return &v
	case NotSelected:
		v := false
		return &v
	default:
		return nil
	}
}

func SelectionFromBool(v *bool) Selection {
	switch {
	case v == nil:
		return Undetermined
	case *v:
		return Selected
	default:
		return NotSelected
	}
}
