package authprovider

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/userauth-api/internal/domain/entity"
)

// Fields is the untyped form of a payload used by provider agnostic callers.
type Fields map[string]interface{}

// PayloadCodec describes a provider's payload type P to the binding engine.
// Implementations convert explicitly between P, the stored binding and Fields.
type PayloadCodec[P any] interface {
	// New returns an empty payload.
	New() P
	// ExternalID returns the external account id carried by p.
	ExternalID(p P) string
	// Validate reports malformed or empty required fields.
	Validate(p P) error
	// Apply copies the mutable fields of p onto b. Extension state is never touched.
	Apply(p P, b *entity.AuthBinding)
	// FromBinding rebuilds the payload stored for b, extension state included.
	FromBinding(b *entity.AuthBinding) (P, error)
	// Challenge compares the identifying fields of presented against the stored binding.
	Challenge(stored *entity.AuthBinding, presented P) bool
	// FromFields fails with ErrUnknownField or ErrMissingField.
	FromFields(f Fields) (P, error)
	ToFields(p P) Fields
}

// CheckFields verifies that f names only known fields and carries every required one.
func CheckFields(f Fields, known, required []string) error {
	allowed := make(map[string]struct{}, len(known))
	for _, k := range known {
		allowed[k] = struct{}{}
	}

	var unknown []string
	for k := range f {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}

	for _, k := range required {
		if v, ok := f[k]; !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingField, k)
		}
	}
	return nil
}

// maxExactFloat bounds the integers a float64 represents exactly.
const maxExactFloat = 1 << 53

// StringField reads f[key] as a string. Numbers are accepted only when they are exact
// integers: a float64 must be integral and within ±2^53, a json.Number must parse as a
// 64-bit integer. Anything else fails with ErrInvalidPayload instead of being rounded.
func StringField(f Fields, key string) (string, error) {
	switch v := f[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > maxExactFloat {
			return "", fmt.Errorf("%w: field %s is not an exact integer: %v", ErrInvalidPayload, key, v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return strconv.FormatUint(n, 10), nil
		}
		return "", fmt.Errorf("%w: field %s is not an integer: %s", ErrInvalidPayload, key, v)
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: field %s has type %T, want string", ErrInvalidPayload, key, v)
	}
}
