package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/domain"
)

const (
	p = domain.ApprovalPending
	a = domain.ApprovalApproved
	r = domain.ApprovalRejected
)

func TestAggregateApproval(t *testing.T) {
	tests := []struct {
		name     string
		prior    domain.ApprovalStatus
		statuses []domain.ApprovalStatus
		want     domain.ApprovalStatus
	}{
		{"no lands keeps approved", a, nil, a},
		{"no lands keeps rejected", r, []domain.ApprovalStatus{}, r},
		{"no lands keeps pending", p, nil, p},
		{"single pending", a, []domain.ApprovalStatus{p}, p},
		{"pending beats everything", a, []domain.ApprovalStatus{a, r, p}, p},
		{"all approved", p, []domain.ApprovalStatus{a, a, a}, a},
		{"single approved", r, []domain.ApprovalStatus{a}, a},
		{"approved and rejected mix", p, []domain.ApprovalStatus{a, r, a}, r},
		{"all rejected", a, []domain.ApprovalStatus{r, r}, r},
		{"majority approved is still rejected", p, []domain.ApprovalStatus{a, a, a, a, r}, r},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, AggregateApproval(tc.prior, tc.statuses))
		})
	}
}

// TestAggregateApproval_Exhaustive walks every multiset of up to three lands.
func TestAggregateApproval_Exhaustive(t *testing.T) {
	all := []domain.ApprovalStatus{p, a, r}
	var walk func(prefix []domain.ApprovalStatus, depth int)
	walk = func(prefix []domain.ApprovalStatus, depth int) {
		got := AggregateApproval(r, prefix)

		hasPending, allApproved := false, len(prefix) > 0
		for _, s := range prefix {
			if s == p {
				hasPending = true
			}
			if s != a {
				allApproved = false
			}
		}
		switch {
		case len(prefix) == 0:
			require.Equal(t, r, got)
		case hasPending:
			require.Equal(t, p, got, "%v", prefix)
		case allApproved:
			require.Equal(t, a, got, "%v", prefix)
		default:
			require.Equal(t, r, got, "%v", prefix)
		}

		if depth == 0 {
			return
		}
		for _, s := range all {
			walk(append(append([]domain.ApprovalStatus{}, prefix...), s), depth-1)
		}
	}
	walk(nil, 3)
}

type fakeFarmerStore struct {
	status   domain.ApprovalStatus
	lands    []domain.ApprovalStatus
	setCalls int
	listErr  error
}

func (f *fakeFarmerStore) GetFarmerApprovalStatus(context.Context, int64) (domain.ApprovalStatus, error) {
	return f.status, nil
}

func (f *fakeFarmerStore) ListLandStatusesByFarmer(context.Context, int64) ([]domain.ApprovalStatus, error) {
	return f.lands, f.listErr
}

func (f *fakeFarmerStore) SetFarmerApprovalStatus(_ context.Context, _ int64, s domain.ApprovalStatus) error {
	f.setCalls++
	f.status = s
	return nil
}

func TestApprovalAggregator_Recompute(t *testing.T) {
	tests := []struct {
		name      string
		store     *fakeFarmerStore
		want      domain.ApprovalStatus
		wantWrite bool
	}{
		{
			name:      "writes when aggregate differs",
			store:     &fakeFarmerStore{status: p, lands: []domain.ApprovalStatus{a, a}},
			want:      a,
			wantWrite: true,
		},
		{
			name:  "skips write when unchanged",
			store: &fakeFarmerStore{status: p, lands: []domain.ApprovalStatus{p, a}},
			want:  p,
		},
		{
			name:  "zero lands preserves prior",
			store: &fakeFarmerStore{status: a},
			want:  a,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ApprovalAggregator{}.Recompute(context.Background(), tc.store, 7)
			require.NoError(t, err)
			require.Equal(t, tc.want, res.Current)
			require.Equal(t, tc.want, tc.store.status)
			require.Equal(t, tc.wantWrite, tc.store.setCalls == 1)
			require.Equal(t, tc.wantWrite, res.Changed())
		})
	}
}

func TestApprovalAggregator_RecomputePropagatesStoreErrors(t *testing.T) {
	store := &fakeFarmerStore{status: p, listErr: errors.New("connection reset")}

	_, err := ApprovalAggregator{}.Recompute(context.Background(), store, 7)
	require.ErrorContains(t, err, "connection reset")
	require.Zero(t, store.setCalls)
}
