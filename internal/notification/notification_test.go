package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

type memoryStore struct {
	rows []domain.Notification
	err  error
}

func (m *memoryStore) InsertNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	if m.err != nil {
		return domain.Notification{}, m.err
	}
	n.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, n)
	return n, nil
}

func TestTriggers_OnReviewed(t *testing.T) {
	tests := []struct {
		name      string
		review    Review
		wantType  domain.NotificationType
		wantTitle string
		wantMsg   string
	}{
		{
			name:      "land approved",
			review:    Review{FarmerID: 3, EntityType: EntityLand, EntityID: 11, Status: domain.ApprovalApproved},
			wantType:  domain.NotificationLandReviewed,
			wantTitle: "Land #11 approved",
			wantMsg:   "Your land #11 is now approved.",
		},
		{
			name:      "crop plan rejected with remark",
			review:    Review{FarmerID: 3, EntityType: EntityCropPlan, EntityID: 5, Status: domain.ApprovalRejected, Remark: " acreage mismatch "},
			wantType:  domain.NotificationCropPlanReviewed,
			wantTitle: "Crop plan #5 rejected",
			wantMsg:   "Your crop plan #5 is now rejected. Remark: acreage mismatch",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryStore{}
			require.NoError(t, NewTriggers(NewInboxSender(store)).OnReviewed(context.Background(), tc.review))
			require.Len(t, store.rows, 1)
			got := store.rows[0]
			require.Equal(t, tc.wantType, got.Type)
			require.Equal(t, tc.wantTitle, got.Title)
			require.Equal(t, tc.wantMsg, got.Message)
			require.Equal(t, tc.review.EntityID, got.EntityID)
			require.Equal(t, tc.review.FarmerID, got.FarmerID)
		})
	}
}

func TestTriggers_OnReviewedErrors(t *testing.T) {
	err := NewTriggers(NewInboxSender(&memoryStore{})).OnReviewed(context.Background(),
		Review{FarmerID: 1, EntityType: "tractor", EntityID: 1, Status: domain.ApprovalApproved})
	require.Error(t, err)

	err = NewTriggers(NewInboxSender(&memoryStore{err: errors.New("db down")})).OnReviewed(context.Background(),
		Review{FarmerID: 1, EntityType: EntityLand, EntityID: 1, Status: domain.ApprovalApproved})
	require.Error(t, err)
}

func TestInboxSender_ValidatesParams(t *testing.T) {
	s := NewInboxSender(&memoryStore{})
	require.Error(t, s.Send(context.Background(), Params{Type: domain.NotificationLandReviewed, Title: "x"}))
	require.Error(t, s.Send(context.Background(), Params{FarmerID: 1, Title: "x"}))
	require.Error(t, s.Send(context.Background(), Params{FarmerID: 1, Type: domain.NotificationLandReviewed}))
}
