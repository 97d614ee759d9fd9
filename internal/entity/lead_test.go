package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func browsingSubmission() *Lead {
	return &Lead{
		Email: "gamer@example.com",
		Phone: "9052477085",
		Stage: StageBrowsing,
	}
}

func TestMergeCreateBrowsingSchedulesFollowup(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	lead := MergeSubmission(nil, browsingSubmission(), now)

	require.NotNil(t, lead.FollowupDueAt)
	assert.Equal(t, now.Add(FollowupDelay), *lead.FollowupDueAt)
	assert.Nil(t, lead.FollowupSentAt)
	assert.Nil(t, lead.FollowupError)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, now, lead.CreatedAt)
}

func TestMergeCreateCompletedNeverSchedules(t *testing.T) {
	now := time.Now()
	sub := browsingSubmission()
	sub.Stage = StageCompleted

	lead := MergeSubmission(nil, sub, now)

	assert.Nil(t, lead.FollowupDueAt)
	assert.Nil(t, lead.FollowupSentAt)
	assert.Nil(t, lead.FollowupError)
}

func TestMergeRepeatBrowsingDoesNotAdvanceClock(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := MergeSubmission(nil, browsingSubmission(), t0)

	second := MergeSubmission(first, browsingSubmission(), t0.Add(30*time.Minute))

	require.NotNil(t, second.FollowupDueAt)
	assert.Equal(t, t0.Add(FollowupDelay), *second.FollowupDueAt)
}

func TestMergeBrowsingAfterSentNeverReschedules(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sent := t0.Add(2 * time.Hour)
	existing := MergeSubmission(nil, browsingSubmission(), t0)
	existing.FollowupDueAt = nil
	existing.FollowupSentAt = &sent

	merged := MergeSubmission(existing, browsingSubmission(), t0.Add(3*time.Hour))

	assert.Nil(t, merged.FollowupDueAt)
	assert.Equal(t, &sent, merged.FollowupSentAt)
}

func TestMergeCompletedClearsAllFollowupState(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sent := t0.Add(2 * time.Hour)
	existing := MergeSubmission(nil, browsingSubmission(), t0)
	existing.FollowupSentAt = &sent
	existing.FollowupError = strPtr("smtp: connection refused")

	sub := browsingSubmission()
	sub.Stage = StageCompleted
	merged := MergeSubmission(existing, sub, t0.Add(3*time.Hour))

	assert.Equal(t, StageCompleted, merged.Stage)
	assert.Nil(t, merged.FollowupDueAt)
	assert.Nil(t, merged.FollowupSentAt)
	assert.Nil(t, merged.FollowupError)
}

func TestMergeCompletedToCompletedStaysClear(t *testing.T) {
	t0 := time.Now()
	sub := browsingSubmission()
	sub.Stage = StageCompleted
	existing := MergeSubmission(nil, sub, t0)

	merged := MergeSubmission(existing, sub, t0.Add(time.Minute))

	assert.Nil(t, merged.FollowupDueAt)
	assert.Nil(t, merged.FollowupSentAt)
	assert.Nil(t, merged.FollowupError)
}

// A completed lead that browses again restarts the clock: COMPLETED wiped
// the bookkeeping, so the BROWSING branch sees a fresh lead.
func TestMergeCompletedThenBrowsingReschedules(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := browsingSubmission()
	sub.Stage = StageCompleted
	existing := MergeSubmission(nil, sub, t0)

	t1 := t0.Add(24 * time.Hour)
	merged := MergeSubmission(existing, browsingSubmission(), t1)

	require.NotNil(t, merged.FollowupDueAt)
	assert.Equal(t, t1.Add(FollowupDelay), *merged.FollowupDueAt)
}

func TestMergeFieldLevelNewWinsUnlessNull(t *testing.T) {
	t0 := time.Now()
	first := browsingSubmission()
	first.Name = strPtr("Aaron")
	first.Mode = strPtr("pc")
	first.Cash = intPtr(120)
	existing := MergeSubmission(nil, first, t0)

	second := browsingSubmission()
	second.Cash = intPtr(170)
	second.Page = strPtr("/tradein/step2")
	merged := MergeSubmission(existing, second, t0.Add(time.Minute))

	assert.Equal(t, "Aaron", *merged.Name) // kept: submission carried null
	assert.Equal(t, "pc", *merged.Mode)
	assert.Equal(t, 170, *merged.Cash) // replaced: submission carried a value
	assert.Equal(t, "/tradein/step2", *merged.Page)
}

// The storefront serializes "nothing picked yet" as `"selections": null`.
// That literal null is four bytes of RawMessage, not an empty slice, and
// must count as absent — never wiping selections a step-2 submission
// stored earlier.
func TestMergeExplicitNullSelectionsKeepsStored(t *testing.T) {
	t0 := time.Now()
	first := browsingSubmission()
	first.Selections = json.RawMessage(`[{"Category":"GPU","Item":"GTX1060"}]`)
	existing := MergeSubmission(nil, first, t0)

	second := browsingSubmission()
	second.Selections = json.RawMessage("null")
	merged := MergeSubmission(existing, second, t0.Add(time.Minute))

	assert.JSONEq(t, `[{"Category":"GPU","Item":"GTX1060"}]`, string(merged.Selections))
}

func TestMergeCreateNormalizesNullSelections(t *testing.T) {
	sub := browsingSubmission()
	sub.Selections = json.RawMessage("null")

	lead := MergeSubmission(nil, sub, time.Now())

	assert.Nil(t, lead.Selections)
}

func TestMergeConsentSticksOnceGiven(t *testing.T) {
	t0 := time.Now()
	first := browsingSubmission()
	first.ConsentEmail = true
	existing := MergeSubmission(nil, first, t0)

	merged := MergeSubmission(existing, browsingSubmission(), t0.Add(time.Minute))
	assert.True(t, merged.ConsentEmail)
}
