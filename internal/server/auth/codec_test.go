package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
)

var testNow = time.Unix(1_700_000_000, 0)

func newTestCodec(t *testing.T, alg Algorithm, secret string, now time.Time) *Codec {
	t.Helper()
	cfg, err := NewSigningConfig([]byte(secret), alg)
	if err != nil {
		t.Fatalf("NewSigningConfig error: %v", err)
	}
	c, err := NewCodec(cfg, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c
}

func validClaims() SessionClaims {
	return NewSessionClaims("user-123", testNow, 10*time.Minute)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, alg := range []Algorithm{HS256, HS384, HS512} {
		c := newTestCodec(t, alg, "super-secret", testNow.Add(time.Minute))

		want := validClaims()
		tok, err := c.Encode(want)
		if err != nil {
			t.Fatalf("%s: Encode error: %v", alg, err)
		}
		if n := strings.Count(tok, "."); n != 2 {
			t.Fatalf("%s: expected three segments, got %d dots", alg, n)
		}

		got, err := c.Decode(tok)
		if err != nil {
			t.Fatalf("%s: Decode error: %v", alg, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: claims mismatch (-want +got):\n%s", alg, diff)
		}
	}
}

func TestEncode_WireFormat(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, HS512, "k", testNow)
	tok, err := c.Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	parts := strings.Split(tok, ".")
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("header not base64url: %v", err)
	}
	if !strings.Contains(string(header), `"alg":"HS512"`) {
		t.Fatalf("header does not declare algorithm: %s", header)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("payload not base64url: %v", err)
	}
	for _, want := range []string{`"sub":"user-123"`, `"iat":1700000000`, `"exp":1700000600`} {
		if !strings.Contains(string(payload), want) {
			t.Fatalf("payload %s missing %s", payload, want)
		}
	}
}

func TestEncode_InvalidClaims(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, HS256, "k", testNow)

	cases := []SessionClaims{
		{Subject: "", IssuedAt: testNow, ExpiresAt: testNow.Add(time.Minute)},
		{Subject: "u", IssuedAt: testNow, ExpiresAt: testNow},
		{Subject: "u", IssuedAt: testNow, ExpiresAt: testNow.Add(-time.Minute)},
	}
	for _, claims := range cases {
		if _, err := c.Encode(claims); !errors.Is(err, ErrInvalidClaims) {
			t.Fatalf("Encode(%+v): want ErrInvalidClaims, got %v", claims, err)
		}
	}
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()

	claims := validClaims()
	issuer := newTestCodec(t, HS512, "secret", testNow)
	tok, err := issuer.Encode(claims)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	for _, now := range []time.Time{claims.ExpiresAt, claims.ExpiresAt.Add(time.Second), claims.ExpiresAt.Add(24 * time.Hour)} {
		c := newTestCodec(t, HS512, "secret", now)
		got, err := c.Decode(tok)
		if !errors.Is(err, ErrExpired) {
			t.Fatalf("at %v: want ErrExpired, got %v", now, err)
		}
		if got != (SessionClaims{}) {
			t.Fatalf("expired decode must return zero claims, got %+v", got)
		}
	}

	// one second before expiry is still valid
	c := newTestCodec(t, HS512, "secret", claims.ExpiresAt.Add(-time.Second))
	if _, err := c.Decode(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestCodec(t, HS256, "right-secret", testNow).Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	_, err = newTestCodec(t, HS256, "wrong-secret", testNow).Decode(tok)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("want ErrBadSignature, got %v", err)
	}
}

func flipEachBit(t *testing.T, tok string, segment int, wantErr error) {
	t.Helper()

	c := newTestCodec(t, HS512, "secret", testNow)
	parts := strings.Split(tok, ".")
	raw, err := base64.RawURLEncoding.DecodeString(parts[segment])
	if err != nil {
		t.Fatalf("decode segment: %v", err)
	}

	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(raw))
			copy(mutated, raw)
			mutated[i] ^= 1 << bit

			p := append([]string(nil), parts...)
			p[segment] = base64.RawURLEncoding.EncodeToString(mutated)

			got, err := c.Decode(strings.Join(p, "."))
			if !errors.Is(err, wantErr) {
				t.Fatalf("segment %d byte %d bit %d: want %v, got %v", segment, i, bit, wantErr, err)
			}
			if got != (SessionClaims{}) {
				t.Fatalf("tampered token produced claims %+v", got)
			}
		}
	}
}

func TestDecode_TamperedSignature(t *testing.T) {
	t.Parallel()

	tok, err := newTestCodec(t, HS512, "secret", testNow).Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	flipEachBit(t, tok, 2, ErrBadSignature)
}

func TestDecode_TamperedPayload(t *testing.T) {
	t.Parallel()

	tok, err := newTestCodec(t, HS512, "secret", testNow).Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	flipEachBit(t, tok, 1, ErrBadSignature)
}

func TestDecode_NonCanonicalSignatureEncoding(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, HS256, "secret", testNow)
	tok, err := c.Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	// HS256 signatures are 32 bytes: the last base64 character carries
	// two unused bits that are zero in canonical form
	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	last := strings.IndexByte(base64URLAlphabet, sig[len(sig)-1])
	sig[len(sig)-1] = base64URLAlphabet[last|1]

	_, err = c.Decode(parts[0] + "." + parts[1] + "." + string(sig))
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("want ErrBadSignature, got %v", err)
	}
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func TestDecode_AlgorithmMismatch(t *testing.T) {
	t.Parallel()

	tok, err := newTestCodec(t, HS256, "secret", testNow).Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	_, err = newTestCodec(t, HS512, "secret", testNow).Decode(tok)
	if !errors.Is(err, ErrAlgorithmMismatch) {
		t.Fatalf("want ErrAlgorithmMismatch, got %v", err)
	}
}

func TestDecode_AlgNone(t *testing.T) {
	t.Parallel()

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(testNow),
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	_, err = newTestCodec(t, HS512, "secret", testNow).Decode(unsigned)
	if !errors.Is(err, ErrAlgorithmMismatch) {
		t.Fatalf("want ErrAlgorithmMismatch, got %v", err)
	}
}

func TestDecode_HeaderSwappedToConfiguredAlgorithm(t *testing.T) {
	t.Parallel()

	tok, err := newTestCodec(t, HS256, "secret", testNow).Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	parts := strings.Split(tok, ".")
	parts[0] = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS512","typ":"JWT"}`))

	_, err = newTestCodec(t, HS512, "secret", testNow).Decode(strings.Join(parts, "."))
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("want ErrBadSignature, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, HS256, "k", testNow)
	sign := func(header, payload string) string {
		h := base64.RawURLEncoding.EncodeToString([]byte(header))
		p := base64.RawURLEncoding.EncodeToString([]byte(payload))
		sig, err := jwt.SigningMethodHS256.Sign(h+"."+p, []byte("k"))
		if err != nil {
			t.Fatalf("Sign error: %v", err)
		}
		return h + "." + p + "." + base64.RawURLEncoding.EncodeToString(sig)
	}

	cases := map[string]string{
		"empty":              "",
		"one segment":        "abc",
		"two segments":       "a.b",
		"four segments":      "a.b.c.d",
		"header not base64":  "!!!.e30.sig",
		"header not json":    base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".e30.sig",
		"header without alg": base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`)) + ".e30.sig",
		"payload not json":   sign(`{"alg":"HS256"}`, "nope"),
		"missing exp":        sign(`{"alg":"HS256"}`, `{"sub":"u","iat":1700000000}`),
		"missing iat":        sign(`{"alg":"HS256"}`, `{"sub":"u","exp":1700000600}`),
		"missing sub":        sign(`{"alg":"HS256"}`, `{"iat":1700000000,"exp":1700000600}`),
		"exp before iat":     sign(`{"alg":"HS256"}`, `{"sub":"u","iat":1700000600,"exp":1700000000}`),
		"fractional exp":     sign(`{"alg":"HS256"}`, `{"sub":"u","iat":1700000000,"exp":1700000600.5}`),
	}

	for name, tok := range cases {
		got, err := c.Decode(tok)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: want ErrMalformed, got %v", name, err)
		}
		if got != (SessionClaims{}) {
			t.Fatalf("%s: malformed decode returned claims %+v", name, got)
		}
	}
}

func TestDecode_ReadsClockEachCall(t *testing.T) {
	t.Parallel()

	now := testNow
	cfg, _ := NewSigningConfig([]byte("k"), HS256)
	c, err := NewCodec(cfg, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	tok, err := c.Encode(validClaims())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if _, err := c.Decode(tok); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	now = now.Add(time.Hour)
	if _, err := c.Decode(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("want ErrExpired after clock moved, got %v", err)
	}
}

func TestNewCodec_RequiresConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewCodec(SigningConfig{}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("want ErrMissingSecret, got %v", err)
	}
}

func TestSessionClaims_IDDistinguishesSameSecond(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, HS256, "k", testNow)
	a := NewSessionClaims("user-123", testNow, time.Minute)
	b := NewSessionClaims("user-123", testNow.Add(300*time.Millisecond), time.Minute)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if !a.IssuedAt.Equal(b.IssuedAt) {
		t.Fatalf("expected equal issue times, got %v and %v", a.IssuedAt, b.IssuedAt)
	}

	tokA, err := c.Encode(a)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	tokB, err := c.Encode(b)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if tokA == tokB {
		t.Fatal("same-second tokens must differ")
	}
	got, err := c.Decode(tokA)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("jti = %q, want %q", got.ID, a.ID)
	}

	// tokens without jti still decode
	legacy, err := c.Encode(SessionClaims{Subject: "u", IssuedAt: testNow, ExpiresAt: testNow.Add(time.Minute)})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	payload, _ := base64.RawURLEncoding.DecodeString(strings.Split(legacy, ".")[1])
	if strings.Contains(string(payload), "jti") {
		t.Fatalf("empty ID must be omitted: %s", payload)
	}
	if got, err := c.Decode(legacy); err != nil || got.ID != "" {
		t.Fatalf("legacy decode = %+v, %v", got, err)
	}
}
