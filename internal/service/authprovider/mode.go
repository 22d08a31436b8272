package authprovider

import (
	"fmt"
	"strings"
)

// BindPolicy decides whether a request may create and/or update a binding.
type BindPolicy int

const (
	CreateOrUpdate BindPolicy = iota
	CreateOnly
	UpdateOnly
	// LoginOnly never creates or updates; it only runs the login challenge.
	LoginOnly
)

func (p BindPolicy) String() string {
	switch p {
	case CreateOrUpdate:
		return "CreateOrUpdate"
	case CreateOnly:
		return "CreateOnly"
	case UpdateOnly:
		return "UpdateOnly"
	case LoginOnly:
		return "LoginOnly"
	}
	return fmt.Sprintf("BindPolicy(%d)", int(p))
}

func (p BindPolicy) allowsCreate() bool { return p == CreateOrUpdate || p == CreateOnly }
func (p BindPolicy) allowsUpdate() bool { return p == CreateOrUpdate || p == UpdateOnly }

// LoginPolicy decides whether the login challenge runs after create/update.
type LoginPolicy int

const (
	NoLogin LoginPolicy = iota
	// CheckLogin validates the challenge without recording a login.
	CheckLogin
	// ActualLogin validates the challenge and applies login side effects.
	ActualLogin
)

func (p LoginPolicy) String() string {
	switch p {
	case NoLogin:
		return "NoLogin"
	case CheckLogin:
		return "CheckLogin"
	case ActualLogin:
		return "ActualLogin"
	}
	return fmt.Sprintf("LoginPolicy(%d)", int(p))
}

// Mode is the resolved request policy.
type Mode struct {
	Bind  BindPolicy
	Login LoginPolicy
}

// Validate rejects values outside the enumerations and LoginOnly without a login policy.
func (m Mode) Validate() error {
	if m.Bind < CreateOrUpdate || m.Bind > LoginOnly {
		return fmt.Errorf("%w: %s", ErrInvalidMode, m.Bind)
	}
	if m.Login < NoLogin || m.Login > ActualLogin {
		return fmt.Errorf("%w: %s", ErrInvalidMode, m.Login)
	}
	if m.Bind == LoginOnly && m.Login == NoLogin {
		return fmt.Errorf("%w: LoginOnly requires CheckLogin or ActualLogin", ErrInvalidMode)
	}
	return nil
}

func (m Mode) String() string {
	if m.Login == NoLogin {
		return m.Bind.String()
	}
	return m.Bind.String() + "|" + m.Login.String()
}

// Flag is the bitset form of a mode accepted from generic callers.
type Flag uint8

const (
	FlagCreateOnly Flag = 1 << iota
	FlagUpdateOnly
	FlagWithCheckLogin
	FlagWithActualLogin
)

var flagNames = map[string]Flag{
	"createonly":      FlagCreateOnly,
	"updateonly":      FlagUpdateOnly,
	"withchecklogin":  FlagWithCheckLogin,
	"withactuallogin": FlagWithActualLogin,
}

// ModeFromFlags normalizes a flag bitset.
// CreateOnly|UpdateOnly and the empty set both mean CreateOrUpdate. A login flag
// without any create/update flag means LoginOnly. ActualLogin wins over CheckLogin.
func ModeFromFlags(f Flag) (Mode, error) {
	if f&^(FlagCreateOnly|FlagUpdateOnly|FlagWithCheckLogin|FlagWithActualLogin) != 0 {
		return Mode{}, fmt.Errorf("%w: unknown flag bits %#x", ErrInvalidMode, uint8(f))
	}

	var m Mode
	switch {
	case f&FlagWithActualLogin != 0:
		m.Login = ActualLogin
	case f&FlagWithCheckLogin != 0:
		m.Login = CheckLogin
	}

	create, update := f&FlagCreateOnly != 0, f&FlagUpdateOnly != 0
	switch {
	case create && !update:
		m.Bind = CreateOnly
	case update && !create:
		m.Bind = UpdateOnly
	case !create && !update && m.Login != NoLogin:
		m.Bind = LoginOnly
	default:
		m.Bind = CreateOrUpdate
	}
	return m, nil
}

// ParseMode parses either an enumerated mode ("CreateOnly", "LoginOnly|ActualLogin")
// or a flag expression ("CreateOnly|UpdateOnly|WithActualLogin"). Names are case insensitive.
// An empty string means CreateOrUpdate.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Mode{}, nil
	}

	var (
		f          Flag
		explicit   Mode
		isExplicit bool
	)
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		if bit, ok := flagNames[name]; ok {
			f |= bit
			continue
		}
		switch name {
		case "createorupdate":
			isExplicit = true
		case "loginonly":
			explicit.Bind, isExplicit = LoginOnly, true
		case "checklogin":
			f |= FlagWithCheckLogin
		case "actuallogin":
			f |= FlagWithActualLogin
		case "nologin":
		default:
			return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, part)
		}
	}

	m, err := ModeFromFlags(f)
	if err != nil {
		return Mode{}, err
	}
	if isExplicit {
		// an explicit CreateOrUpdate or LoginOnly overrides the flags
		if f&(FlagCreateOnly|FlagUpdateOnly) != 0 {
			return Mode{}, fmt.Errorf("%w: %q mixes policies", ErrInvalidMode, s)
		}
		m.Bind = explicit.Bind
	}
	return m, m.Validate()
}
