package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/domain"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantCmd string
		wantErr bool
	}{
		{name: "import", args: []string{"import", "configs.xlsx"}, wantCmd: "import"},
		{name: "export upper case", args: []string{"EXPORT", "out.XLSX"}, wantCmd: "export"},
		{name: "missing path", args: []string{"import"}, wantErr: true},
		{name: "unknown command", args: []string{"sync", "a.xlsx"}, wantErr: true},
		{name: "wrong extension", args: []string{"import", "a.csv"}, wantErr: true},
		{name: "short path", args: []string{"import", "a"}, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cmd, _, err := parseArgs(tc.args)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, cmd)
		})
	}
}

type fakeAccounts map[string]domain.Account

func (f fakeAccounts) GetAccountByPhone(_ context.Context, phone string) (domain.Account, error) {
	a, ok := f[phone]
	if !ok {
		return domain.Account{}, errors.New("not found")
	}
	return a, nil
}

func TestResolveAdmin(t *testing.T) {
	t.Parallel()

	accounts := fakeAccounts{
		"100": {ID: 7, Phone: "100", Role: domain.RoleAdmin},
		"200": {ID: 8, Phone: "200", Role: domain.RoleFarmer},
	}

	actor, err := resolveAdmin(context.Background(), accounts, " 100 ")
	require.NoError(t, err)
	require.Equal(t, domain.Actor{AccountID: 7, Role: domain.RoleAdmin}, actor)

	_, err = resolveAdmin(context.Background(), accounts, "200")
	require.Error(t, err)

	_, err = resolveAdmin(context.Background(), accounts, "")
	require.Error(t, err)

	_, err = resolveAdmin(context.Background(), accounts, "300")
	require.Error(t, err)
}
