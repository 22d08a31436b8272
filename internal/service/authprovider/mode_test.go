package authprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFromFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags Flag
		want  Mode
	}{
		{"empty", 0, Mode{Bind: CreateOrUpdate}},
		{"create only", FlagCreateOnly, Mode{Bind: CreateOnly}},
		{"update only", FlagUpdateOnly, Mode{Bind: UpdateOnly}},
		{"create and update", FlagCreateOnly | FlagUpdateOnly, Mode{Bind: CreateOrUpdate}},
		{"update with actual login", FlagUpdateOnly | FlagWithActualLogin, Mode{Bind: UpdateOnly, Login: ActualLogin}},
		{"login flag alone", FlagWithCheckLogin, Mode{Bind: LoginOnly, Login: CheckLogin}},
		{"actual login wins", FlagWithCheckLogin | FlagWithActualLogin, Mode{Bind: LoginOnly, Login: ActualLogin}},
		{"create or update with check", FlagCreateOnly | FlagUpdateOnly | FlagWithCheckLogin, Mode{Bind: CreateOrUpdate, Login: CheckLogin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ModeFromFlags(tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}

	_, err := ModeFromFlags(1 << 6)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", Mode{}},
		{"CreateOnly", Mode{Bind: CreateOnly}},
		{"createonly|updateonly", Mode{Bind: CreateOrUpdate}},
		{"UpdateOnly|WithActualLogin", Mode{Bind: UpdateOnly, Login: ActualLogin}},
		{"LoginOnly|CheckLogin", Mode{Bind: LoginOnly, Login: CheckLogin}},
		{"CreateOrUpdate|ActualLogin", Mode{Bind: CreateOrUpdate, Login: ActualLogin}},
		{" WithCheckLogin ", Mode{Bind: LoginOnly, Login: CheckLogin}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"LoginOnly", "Sideways", "LoginOnly|CreateOnly|CheckLogin"} {
		_, err := ParseMode(bad)
		assert.ErrorIs(t, err, ErrInvalidMode, bad)
	}
}

func TestMode_Validate(t *testing.T) {
	assert.ErrorIs(t, Mode{Bind: LoginOnly}.Validate(), ErrInvalidMode)
	assert.ErrorIs(t, Mode{Bind: BindPolicy(9)}.Validate(), ErrInvalidMode)
	assert.ErrorIs(t, Mode{Login: LoginPolicy(-1)}.Validate(), ErrInvalidMode)
	assert.Equal(t, "UpdateOnly|ActualLogin", Mode{Bind: UpdateOnly, Login: ActualLogin}.String())
	assert.Equal(t, "CreateOrUpdate", Mode{}.String())
}
