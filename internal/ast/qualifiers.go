package ast

// Unsafety — квалификатор `unsafe` на trait, impl или fn.
type Unsafety uint8

const (
	Safe Unsafety = iota
	Unsafe

	// UnsafetyCount is the number of Unsafety values; tables indexed by
	// Unsafety are sized with it.
	UnsafetyCount
)

func (u Unsafety) String() string {
	switch u {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	default:
		return "Unsafety(?)"
	}
}

// Polarity says whether an impl asserts (`impl T for X`) or denies
// (`impl !T for X`) the trait.
type Polarity uint8

const (
	Positive Polarity = iota
	Negative

	PolarityCount
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "Polarity(?)"
	}
}

// Visibility описывает доступность элемента.
type Visibility uint8

const (
	VisPrivate Visibility = iota
	VisPublic
)

func (v Visibility) String() string {
	switch v {
	case VisPublic:
		return "public"
	default:
		return "private"
	}
}
