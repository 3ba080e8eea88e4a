package value

// Category is the promotion category of a scalar value shape.
//
// The classifier is a pure function of a value's shape. Every shadow
// operation is written as a switch over Category so the promotion policy
// stays auditable and exhaustive.
type Category int

const (
	// Opaque is any shape the promotion policy does not touch.
	Opaque Category = iota
	// HardwareInteger is a machine integer.
	HardwareInteger
	// ExactRational is an exact rational number.
	ExactRational
	// IrrationalConstant is a named symbolic constant (pi, e, ...).
	IrrationalConstant
	// AlreadyFloating is a floating-point value of any width. Promotion
	// never re-rounds a value that already chose a width.
	AlreadyFloating
)

func (c Category) String() string {
	switch c {
	case HardwareInteger:
		return "integer"
	case ExactRational:
		return "rational"
	case IrrationalConstant:
		return "irrational"
	case AlreadyFloating:
		return "floating"
	default:
		return "opaque"
	}
}

// Class is the full classification of a value: its base category plus
// whether it is wrapped in a complex or array shape.
type Class struct {
	Base    Category
	Complex bool
	Array   bool
}

// Promotable reports whether the base category is one promotion applies to.
func (c Class) Promotable() bool {
	switch c.Base {
	case HardwareInteger, ExactRational, IrrationalConstant:
		return true
	}
	return false
}

// Exact reports whether the base category admits exact arithmetic.
func (c Class) Exact() bool {
	return c.Base == HardwareInteger || c.Base == ExactRational
}

// Classify categorizes a runtime value.
//
// Complex values classify as ComplexOf(join of parts); arrays classify as
// ArrayOf(join of elements). A complex or array containing any floating or
// opaque member joins to that member's category, which makes the whole
// shape ineligible for promotion.
func Classify(v Value) Class {
	switch val := v.(type) {
	case Int:
		return Class{Base: HardwareInteger}
	case Rational:
		return Class{Base: ExactRational}
	case Irrational:
		return Class{Base: IrrationalConstant}
	case Float:
		return Class{Base: AlreadyFloating}
	case Complex:
		re := Classify(val.Re)
		im := Classify(val.Im)
		return Class{Base: join(re.Base, im.Base), Complex: true}
	case Array:
		base := HardwareInteger
		if len(val.Elems) == 0 {
			base = Opaque
		}
		for _, e := range val.Elems {
			ec := Classify(e)
			if ec.Complex || ec.Array {
				base = Opaque
				break
			}
			base = join(base, ec.Base)
		}
		return Class{Base: base, Array: true}
	default:
		return Class{Base: Opaque}
	}
}

// join combines two member categories into the category of the containing
// shape. Exactness is sticky upward (int+rational -> rational); a floating
// or opaque member poisons the join.
func join(a, b Category) Category {
	if a == Opaque || b == Opaque {
		return Opaque
	}
	if a == AlreadyFloating || b == AlreadyFloating {
		return AlreadyFloating
	}
	if a == IrrationalConstant || b == IrrationalConstant {
		return IrrationalConstant
	}
	if a == ExactRational || b == ExactRational {
		return ExactRational
	}
	return HardwareInteger
}
