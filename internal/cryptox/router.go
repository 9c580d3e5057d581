package cryptox

import "fmt"

// Router hashes with one primary scheme and verifies hashes of every scheme
// it knows, so stored credentials survive a scheme switch.
type Router struct {
	primary Hasher
	schemes map[string]Hasher
}

func NewRouter(primary Hasher, others ...Hasher) *Router {
	r := &Router{primary: primary, schemes: map[string]Hasher{primary.Scheme(): primary}}
	for _, h := range others {
		if _, ok := r.schemes[h.Scheme()]; !ok {
			r.schemes[h.Scheme()] = h
		}
	}
	return r
}

// NewDefaultRouter routes between all built-in schemes, hashing new
// passwords with primary.
func NewDefaultRouter(primary string) (*Router, error) {
	p, err := NewHasher(primary)
	if err != nil {
		return nil, err
	}
	return NewRouter(p, NewArgon2idHasher(), NewScryptHasher()), nil
}

func (r *Router) Scheme() string { return r.primary.Scheme() }

func (r *Router) Hash(password string, salt Salt) (string, error) {
	return r.primary.Hash(password, salt)
}

func (r *Router) Verify(password, encodedHash string) (bool, error) {
	scheme := schemeOf(encodedHash)
	h, ok := r.schemes[scheme]
	if !ok {
		return false, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedHash, scheme)
	}
	return h.Verify(password, encodedHash)
}

// NeedsRehash reports whether encodedHash was produced by a scheme other
// than the primary one.
func (r *Router) NeedsRehash(encodedHash string) bool {
	return schemeOf(encodedHash) != r.primary.Scheme()
}
