package cookie

import (
	"fmt"
	"time"
)

// Variant identifies one of the positional constructor forms.
type Variant int

const (
	// VariantNameValue is the (name, value) form
	VariantNameValue Variant = iota + 2

	// VariantPath is the (name, value, path) form
	VariantPath

	// VariantExpiry is the (name, value, path, expiry) form
	VariantExpiry

	// VariantDomain is the (name, value, domain, path, expiry) form
	VariantDomain

	// VariantSecure is the (name, value, domain, path, expiry, secure) form
	VariantSecure
)

// slot names a positional argument.
type slot int

const (
	slotName slot = iota
	slotValue
	slotDomain
	slotPath
	slotExpiry
	slotSecure
)

func (s slot) String() string {
	switch s {
	case slotName:
		return "name"
	case slotValue:
		return "value"
	case slotDomain:
		return "domain"
	case slotPath:
		return "path"
	case slotExpiry:
		return "expiry"
	case slotSecure:
		return "secure"
	default:
		return "unknown"
	}
}

// layouts maps each variant to the attribute bound at every position.
// Attributes missing from a layout keep their zero value and pick up the
// defaults in Build.
var layouts = map[Variant][]slot{
	VariantNameValue: {slotName, slotValue},
	VariantPath:      {slotName, slotValue, slotPath},
	VariantExpiry:    {slotName, slotValue, slotPath, slotExpiry},
	VariantDomain:    {slotName, slotValue, slotDomain, slotPath, slotExpiry},
	VariantSecure:    {slotName, slotValue, slotDomain, slotPath, slotExpiry, slotSecure},
}

// VariantFor returns the constructor variant for n positional arguments.
func VariantFor(n int) (Variant, error) {
	switch {
	case n <= 0:
		return 0, constructionError("name", ErrMissingName)
	case n == 1:
		return 0, constructionError("value", ErrMissingValue)
	case n > int(VariantSecure):
		return 0, constructionError("arguments", fmt.Errorf("%w: got %d, at most %d", ErrTooManyArgs, n, VariantSecure))
	}
	// n == 4 is VariantExpiry, n == 5 is VariantDomain, and so on.
	return Variant(n), nil
}

// Arity returns the number of positional arguments the variant takes.
func (v Variant) Arity() int {
	return int(v)
}

// String returns a short description of the variant's argument list.
func (v Variant) String() string {
	layout, ok := layouts[v]
	if !ok {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	s := "("
	for i, sl := range layout {
		if i > 0 {
			s += ", "
		}
		s += sl.String()
	}
	return s + ")"
}

// New creates a host-only session cookie with path "/".
func New(name, value string) (*Cookie, error) {
	return Build(Attributes{Name: name, Value: value})
}

// NewWithPath creates a host-only session cookie scoped to path.
// The third argument is always the path, never the domain.
func NewWithPath(name, value, path string) (*Cookie, error) {
	return Build(Attributes{Name: name, Value: value, Path: path})
}

// NewWithExpiry creates a host-only cookie scoped to path that expires at
// expiry. A zero expiry yields a session cookie.
func NewWithExpiry(name, value, path string, expiry time.Time) (*Cookie, error) {
	return Build(Attributes{Name: name, Value: value, Path: path, Expiry: optionalTime(expiry)})
}

// NewWithDomain creates a cookie for domain and path that expires at expiry.
// A zero expiry yields a session cookie.
func NewWithDomain(name, value, domain, path string, expiry time.Time) (*Cookie, error) {
	return Build(Attributes{Name: name, Value: value, Domain: domain, Path: path, Expiry: optionalTime(expiry)})
}

// NewSecure is NewWithDomain with an explicit secure flag.
func NewSecure(name, value, domain, path string, expiry time.Time, secure bool) (*Cookie, error) {
	return Build(Attributes{
		Name:   name,
		Value:  value,
		Domain: domain,
		Path:   path,
		Expiry: optionalTime(expiry),
		Secure: secure,
	})
}

// FromArgs builds a cookie from a positional argument list, resolving the
// meaning of each position through VariantFor(len(args)).
//
// Name, value, domain and path positions take strings. Expiry takes
// time.Time, *time.Time or nil. Secure takes a bool. A nil name or value is
// treated as omitted.
func FromArgs(args ...any) (*Cookie, error) {
	variant, err := VariantFor(len(args))
	if err != nil {
		return nil, err
	}

	var attrs Attributes
	for i, sl := range layouts[variant] {
		if err := bind(&attrs, sl, args[i]); err != nil {
			return nil, err
		}
	}
	return Build(attrs)
}

// bind assigns arg to the attribute named by sl.
func bind(attrs *Attributes, sl slot, arg any) error {
	switch sl {
	case slotName, slotValue, slotDomain, slotPath:
		if arg == nil {
			switch sl {
			case slotName:
				return constructionError("name", ErrMissingName)
			case slotValue:
				return constructionError("value", ErrMissingValue)
			}
			return nil
		}
		s, ok := arg.(string)
		if !ok {
			return constructionError(sl.String(), fmt.Errorf("%w: expected string, got %T", ErrInvalidArg, arg))
		}
		switch sl {
		case slotName:
			attrs.Name = s
		case slotValue:
			attrs.Value = s
		case slotDomain:
			attrs.Domain = s
		case slotPath:
			attrs.Path = s
		}

	case slotExpiry:
		switch v := arg.(type) {
		case nil:
		case time.Time:
			attrs.Expiry = optionalTime(v)
		case *time.Time:
			if v != nil {
				attrs.Expiry = optionalTime(*v)
			}
		default:
			return constructionError("expiry", fmt.Errorf("%w: expected time.Time, got %T", ErrInvalidArg, arg))
		}

	case slotSecure:
		b, ok := arg.(bool)
		if !ok {
			return constructionError("secure", fmt.Errorf("%w: expected bool, got %T", ErrInvalidArg, arg))
		}
		attrs.Secure = b
	}
	return nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
