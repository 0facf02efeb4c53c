package attestation

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	apperrors "tradeflow/internal/errors"
)

const (
	SealField = "seal"
	// WireSealField is the name the HTTP contract uses for the seal. The
	// generate endpoint emits it next to SealField; verify accepts either.
	WireSealField = "securityHash"
)

var ErrEmptySecret = errors.New("attestation secret must not be empty")

// Verification is the outcome of checking a sealed payload. A mismatch is a
// normal outcome, not an error.
type Verification struct {
	IsValid      bool   `json:"isValid"`
	ProvidedSeal string `json:"providedSeal"`
	ComputedSeal string `json:"computedSeal"`
}

// Codec seals packing-list payloads with HMAC-SHA256. It holds no mutable
// state and is safe for concurrent use.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Canonicalize serializes payload with object keys sorted at every level,
// no insignificant whitespace and no HTML escaping. Numbers keep their exact
// decimal value; equivalent spellings such as 10, 10.0 and 1e1 encode
// identically.
func Canonicalize(payload map[string]any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to normalize payload: %w", err)
	}

	normalized, err := normalizeNumbers(decoded)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("failed to canonicalize payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func normalizeNumbers(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			n, err := normalizeNumbers(child)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case []any:
		for i, child := range t {
			n, err := normalizeNumbers(child)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	case json.Number:
		return canonicalNumber(t)
	default:
		return v, nil
	}
}

// maxExponent caps number exponents so that 1e999999999 cannot expand into
// a huge integer.
const maxExponent = 400

// canonicalNumber renders n as a plain decimal: integers without a fraction
// or exponent, other values with the shortest exact fraction.
func canonicalNumber(n json.Number) (json.Number, error) {
	exp, err := exponentOf(string(n))
	if err != nil || exp > maxExponent || exp < -maxExponent {
		return "", apperrors.NewValidationError(fmt.Sprintf("number %s is out of range", n))
	}

	r, ok := new(big.Rat).SetString(string(n))
	if !ok {
		return "", fmt.Errorf("invalid number %s", n)
	}
	if r.IsInt() {
		return json.Number(r.Num().String()), nil
	}
	return json.Number(r.FloatString(fractionDigits(r.Denom()))), nil
}

// fractionDigits returns how many decimal places represent 1/denom exactly.
// JSON numbers are finite decimals, so denom only has the factors 2 and 5.
func fractionDigits(denom *big.Int) int {
	d := new(big.Int).Set(denom)
	twos := countFactor(d, 2)
	fives := countFactor(d, 5)
	return max(twos, fives)
}

// countFactor divides f out of d in place and reports how many times it did.
func countFactor(d *big.Int, f int64) int {
	factor := big.NewInt(f)
	q, r := new(big.Int), new(big.Int)
	count := 0
	for {
		q.QuoRem(d, factor, r)
		if r.Sign() != 0 {
			return count
		}
		d.Set(q)
		count++
	}
}

func exponentOf(s string) (int, error) {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return 0, nil
	}
	return strconv.Atoi(s[i+1:])
}

// Seal computes the hex digest of payload ignoring any seal it carries.
func (c *Codec) Seal(payload map[string]any) (string, error) {
	canonical, err := Canonicalize(unsealed(payload))
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Generate returns a shallow copy of payload with a fresh seal attached.
// The input map is not modified.
func (c *Codec) Generate(payload map[string]any) (map[string]any, error) {
	seal, err := c.Seal(payload)
	if err != nil {
		return nil, err
	}

	sealed := unsealed(payload)
	sealed[SealField] = seal
	return sealed, nil
}

func (c *Codec) Verify(payload map[string]any) (Verification, error) {
	computed, err := c.Seal(payload)
	if err != nil {
		return Verification{}, err
	}

	provided := providedSeal(payload)
	v := Verification{
		ProvidedSeal: provided,
		ComputedSeal: computed,
	}
	if provided == "" {
		return v, nil
	}

	providedBytes, err := hex.DecodeString(provided)
	if err != nil {
		return v, nil
	}
	computedBytes, _ := hex.DecodeString(computed)
	v.IsValid = subtle.ConstantTimeCompare(providedBytes, computedBytes) == 1
	return v, nil
}

func unsealed(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		if k == SealField || k == WireSealField {
			continue
		}
		out[k] = v
	}
	return out
}

func providedSeal(payload map[string]any) string {
	for _, field := range []string{SealField, WireSealField} {
		if s, ok := payload[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
