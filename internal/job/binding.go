package job

import "fmt"

// BindingKind tells where an argument value is taken from.
type BindingKind int

const (
	// ContextRef reads the argument from the job's context map.
	ContextRef BindingKind = iota + 1
	// LinkFrom uses the result of another task of the same job.
	LinkFrom
)

func (k BindingKind) String() string {
	switch k {
	case ContextRef:
		return "context"
	case LinkFrom:
		return "link_from"
	default:
		return fmt.Sprintf("BindingKind(%d)", int(k))
	}
}

// Binding describes the source of one parameter. The zero value has no kind
// and never validates.
type Binding struct {
	Kind BindingKind
	Key  string
}

// Ctx binds a parameter to the context value name.
func Ctx(name string) Binding {
	return Binding{Kind: ContextRef, Key: name}
}

// Link binds a parameter to the result of the task id.
func Link(id string) Binding {
	return Binding{Kind: LinkFrom, Key: id}
}

func (b Binding) String() string {
	return fmt.Sprintf("%s(%q)", b.Kind, b.Key)
}
