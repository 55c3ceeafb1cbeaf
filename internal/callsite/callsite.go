// Package callsite reduces a host-language call site to the identity a
// forbidden-call rule is matched against: a bare name and an argument count.
package callsite

import "strconv"

// Kind classifies the syntactic shape of a call-bearing node
type Kind int

const (
	// KindNone is a node that carries no call at all
	KindNone Kind = iota

	// KindPlainCall is an unqualified call such as exit()
	KindPlainCall

	// KindQualifiedCall is a call through a receiver or qualifier such as System.exit()
	KindQualifiedCall

	// KindConstructorCall is an object creation with an argument list such as new File(p)
	KindConstructorCall

	// KindConstructorReference is a constructor reference such as File::new
	KindConstructorReference

	// KindArrayCreation is an array allocation such as new int[4]
	KindArrayCreation

	// KindMethodReference is a method reference such as String::valueOf
	KindMethodReference
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindPlainCall:
		return "plain_call"
	case KindQualifiedCall:
		return "qualified_call"
	case KindConstructorCall:
		return "constructor_call"
	case KindConstructorReference:
		return "constructor_reference"
	case KindArrayCreation:
		return "array_creation"
	case KindMethodReference:
		return "method_reference"
	default:
		return "none"
	}
}

// Descriptor is what a host syntax tree must expose about one node.
// Name is the bare callee name: the last identifier of a qualified call, or
// the simple type name of a constructor call.
type Descriptor interface {
	Kind() Kind
	Name() string
	// Arguments returns the number of top-level arguments and whether the
	// node has an argument list at all
	Arguments() (count int, hasList bool)
}

// Options controls which shapes are considered
type Options struct {
	// CheckConstructors enables matching on constructor calls
	CheckConstructors bool
}

// Identity is the (name, argument count) pair rules are matched against
type Identity struct {
	Name     string
	ArgCount int
}

// ArgCountString renders the argument count in decimal
func (id Identity) ArgCountString() string {
	return strconv.Itoa(id.ArgCount)
}

// Extract returns the identity of d, or false when the node is not a call
// site that rules apply to. Declining is not an error.
func Extract(d Descriptor, opts Options) (Identity, bool) {
	if d == nil {
		return Identity{}, false
	}

	switch d.Kind() {
	case KindPlainCall, KindQualifiedCall:
		return identityOf(d)
	case KindConstructorCall:
		if !opts.CheckConstructors {
			return Identity{}, false
		}
		return identityOf(d)
	default:
		return Identity{}, false
	}
}

func identityOf(d Descriptor) (Identity, bool) {
	name := d.Name()
	if name == "" {
		return Identity{}, false
	}
	count, hasList := d.Arguments()
	if !hasList {
		return Identity{}, false
	}
	return Identity{Name: name, ArgCount: count}, true
}

// Site is a plain Descriptor value, handy for frontends that compute the
// shape up front
type Site struct {
	SiteKind Kind
	SiteName string
	ArgCount int
	HasArgs  bool
}

// Kind implements Descriptor
func (s Site) Kind() Kind { return s.SiteKind }

// Name implements Descriptor
func (s Site) Name() string { return s.SiteName }

// Arguments implements Descriptor
func (s Site) Arguments() (int, bool) { return s.ArgCount, s.HasArgs }
