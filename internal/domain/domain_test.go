package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatusFilter(t *testing.T) {
	tests := []struct {
		raw     string
		want    StatusFilter
		wantAll bool
		wantErr bool
	}{
		{raw: "", wantAll: true},
		{raw: "All", wantAll: true},
		{raw: "pending", want: StatusFilter{Status: ApprovalPending}},
		{raw: "rejected", want: StatusFilter{Status: ApprovalRejected}},
		{raw: "archived", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseStatusFilter(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantAll, got.All())
			if !tc.wantAll {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestLandPatch_ApplyLeavesUnsetFields(t *testing.T) {
	lat := 12.97
	land := Land{
		Country:        "India",
		Village:        "Hosur",
		LandArea:       4,
		Latitude:       &lat,
		SoilType:       "Red",
		ApprovalStatus: ApprovalApproved,
		AdminRemark:    "ok",
	}
	area := 5.5
	village := "Malur"

	got := LandPatch{LandArea: &area, Village: &village}.Apply(land)

	require.Equal(t, 5.5, got.LandArea)
	require.Equal(t, "Malur", got.Village)
	require.Equal(t, "Red", got.SoilType)
	require.Equal(t, ApprovalApproved, got.ApprovalStatus)
	require.Equal(t, "ok", got.AdminRemark)
	require.Equal(t, 4.0, land.LandArea, "Apply must not mutate its input")
}

func TestFieldValues_DiffComparesOptionalValuesByContent(t *testing.T) {
	a, b := 12.5, 12.5
	prev := Land{Latitude: &a, LandArea: 2}
	next := Land{Latitude: &b, LandArea: 2}

	require.Empty(t, prev.WatchedFields().Diff(next.WatchedFields(), LandWatchedFields))

	c := 13.0
	next.Latitude = &c
	next.Longitude = &c
	require.Equal(t, []string{"latitude", "longitude"},
		prev.WatchedFields().Diff(next.WatchedFields(), LandWatchedFields))
}

func TestCropPlanWatchedFields_IgnoresRemark(t *testing.T) {
	prev := CropPlan{Notes: "n", AdminRemark: "looks fine"}
	next := prev
	next.AdminRemark = "changed"

	require.Empty(t, prev.WatchedFields().Diff(next.WatchedFields(), CropPlanWatchedFields))
}

func TestEventType_ResourceType(t *testing.T) {
	require.Equal(t, "land", EventLandReviewed.ResourceType())
	require.Equal(t, "crop_plan", EventCropPlanReverted.ResourceType())
	require.Equal(t, "plain", EventType("plain").ResourceType())
}

func TestRole_Valid(t *testing.T) {
	require.True(t, RoleFarmer.Valid())
	require.True(t, RoleAdmin.Valid())
	require.False(t, Role("agent").Valid())
}
