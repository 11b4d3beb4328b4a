package encoding

// NewGenericComponent builds a generic name component from a plain string,
// without any percent-decoding or convention parsing.
func NewGenericComponent(s string) Component {
	return Component{Typ: TypeGenericNameComponent, Val: []byte(s)}
}

// Append returns a new Name with the given components appended.
func (n Name) Append(comps ...Component) Name {
	ret := make(Name, len(n)+len(comps))
	copy(ret, n)
	copy(ret[len(n):], comps)
	return ret
}

// Prefix returns the first k components of n. A negative k counts back from
// the end (Prefix(-1) drops the last component), mirroring the
// keyName.prefix(-1) notation in spec.md §3/§4.4.
func (n Name) Prefix(k int) Name {
	if k < 0 {
		k = len(n) + k
	}
	if k < 0 {
		k = 0
	}
	if k > len(n) {
		k = len(n)
	}
	ret := make(Name, k)
	copy(ret, n[:k])
	return ret
}

// At returns the component at index i, or an empty component if out of range.
func (n Name) At(i int) Component {
	if i < 0 {
		i = len(n) + i
	}
	if i < 0 || i >= len(n) {
		return Component{}
	}
	return n[i]
}
