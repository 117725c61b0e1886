package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"agroplan.io/agroplan/internal/domain"
)

func TestBuildAdminAccount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{name: "valid", opts: options{phone: " 9876543210 ", name: "Ops", password: "s3cret-pass"}},
		{name: "missing phone", opts: options{password: "s3cret-pass"}, wantErr: true},
		{name: "short password", opts: options{phone: "9876543210", password: "short"}, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := buildAdminAccount(tc.opts)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "9876543210", got.Phone)
			require.Equal(t, domain.RoleAdmin, got.Role)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte(tc.opts.password)))
		})
	}
}

func TestBuildAdminAccount_DefaultName(t *testing.T) {
	t.Parallel()

	got, err := buildAdminAccount(options{phone: "1", name: "  ", password: "long-enough"})
	require.NoError(t, err)
	require.Equal(t, "Administrator", got.Name)
}
