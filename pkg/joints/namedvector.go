package joints

// NamedVector pairs an ordered collection of elements with a parallel list of
// optional names: Names[i] labels Elements[i]. Both slices are kept at the
// same length by Resize; an empty string means the element is unnamed.
type NamedVector[T any] struct {
	Names    []string `json:"names"`
	Elements []T      `json:"elements"`
}

// Resize sets both Names and Elements to length n. New entries are zero
// values; entries beyond n are discarded.
func (v *NamedVector[T]) Resize(n int) {
	v.Names = resizeSlice(v.Names, n)
	v.Elements = resizeSlice(v.Elements, n)
}

// Size returns the number of elements.
func (v *NamedVector[T]) Size() int {
	return len(v.Elements)
}

// IndexOf returns the index of the first element labeled name, or -1 when no
// element carries that name.
func (v *NamedVector[T]) IndexOf(name string) int {
	for i, n := range v.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// ElementByName returns the element labeled name. The second return value is
// false when no element carries that name.
func (v *NamedVector[T]) ElementByName(name string) (T, bool) {
	if i := v.IndexOf(name); i >= 0 {
		return v.Elements[i], true
	}
	var zero T
	return zero, false
}

func resizeSlice[T any](s []T, n int) []T {
	if n <= len(s) {
		return s[:n]
	}
	return append(s, make([]T, n-len(s))...)
}
