package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagwise/tagwise/internal/common"
	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"
	"github.com/tagwise/tagwise/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, service.Storage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return New(store), store
}

func saveWorking(t *testing.T, store service.Storage, date, description, vendor, amount string) {
	t.Helper()

	record := &model.WorkingRecord{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Vendor:      vendor,
		Amount:      amount,
		Fields: []model.FieldValue{
			{Name: "date", Value: date},
			{Name: "description", Value: description},
			{Name: "vendor", Value: vendor},
			{Name: "amount", Value: amount},
		},
	}
	require.NoError(t, store.SaveWorkingRecord(context.Background(), record))
}

func TestEngine_ApplyTag(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.ApplyTag(ctx, "STARBUCKS #123", "coffee"))

	rule, err := store.GetTagRule(ctx, "STARBUCKS #123")
	require.NoError(t, err)
	assert.Equal(t, "coffee", rule.Tag)
	assert.Equal(t, model.TagSourceManual, rule.Source)

	// Reapplying with a new tag overwrites.
	require.NoError(t, eng.ApplyTag(ctx, "STARBUCKS #123", "dining"))
	rule, err = store.GetTagRule(ctx, "STARBUCKS #123")
	require.NoError(t, err)
	assert.Equal(t, "dining", rule.Tag)
}

func TestEngine_ApplyTagValidation(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, eng.ApplyTag(ctx, "", "coffee"), common.ErrValidation)
	assert.ErrorIs(t, eng.ApplyTag(ctx, "   ", "coffee"), common.ErrValidation)
	assert.ErrorIs(t, eng.ApplyTag(ctx, "STARBUCKS", ""), common.ErrValidation)
	assert.ErrorIs(t, eng.ApplyTag(ctx, "STARBUCKS", "  "), common.ErrValidation)
}

func TestEngine_AutoTagContainment(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	// A rule description contained in new descriptions.
	require.NoError(t, eng.ApplyTag(ctx, "STARBUCKS", "coffee"))

	saveWorking(t, store, "2024-01-15", "STARBUCKS STORE #123", "", "-5.40")
	saveWorking(t, store, "2024-01-16", "starbucks store #456", "", "-6.10")
	saveWorking(t, store, "2024-01-17", "UNRELATED VENDOR", "", "-9.99")

	tagged, err := eng.AutoTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, tagged)

	for _, description := range []string{"STARBUCKS STORE #123", "starbucks store #456"} {
		rule, err := store.GetTagRule(ctx, description)
		require.NoError(t, err)
		assert.Equal(t, "coffee", rule.Tag)
		assert.Equal(t, model.TagSourceAuto, rule.Source)
	}

	// The unmatched description stays untagged.
	untagged, err := store.GetUntaggedDescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"UNRELATED VENDOR"}, untagged)
}

func TestEngine_AutoTagReverseContainment(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	// The rule description is longer than the new one; containment works
	// in both directions.
	require.NoError(t, eng.ApplyTag(ctx, "NETFLIX.COM SUBSCRIPTION", "streaming"))
	saveWorking(t, store, "2024-01-15", "NETFLIX.COM", "", "-15.99")

	tagged, err := eng.AutoTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tagged)

	rule, err := store.GetTagRule(ctx, "NETFLIX.COM")
	require.NoError(t, err)
	assert.Equal(t, "streaming", rule.Tag)
}

func TestEngine_AutoTagFrequencyTieBreak(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	// Two rules point at "groceries", one at "pharmacy"; the more frequent
	// tag wins for a description matching all three.
	require.NoError(t, eng.ApplyTag(ctx, "TARGET", "groceries"))
	require.NoError(t, eng.ApplyTag(ctx, "STORE", "groceries"))
	require.NoError(t, eng.ApplyTag(ctx, "PHARMACY", "pharmacy"))

	saveWorking(t, store, "2024-01-15", "TARGET STORE PHARMACY", "", "-20.00")

	tagged, err := eng.AutoTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tagged)

	rule, err := store.GetTagRule(ctx, "TARGET STORE PHARMACY")
	require.NoError(t, err)
	assert.Equal(t, "groceries", rule.Tag)
}

func TestEngine_AutoTagEqualCountsDeterministic(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.ApplyTag(ctx, "SHELL", "fuel"))
	require.NoError(t, eng.ApplyTag(ctx, "WASH", "car"))

	saveWorking(t, store, "2024-01-15", "SHELL WASH STATION", "", "-40.00")

	tagged, err := eng.AutoTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tagged)

	// One match each; the lexicographically smaller tag wins.
	rule, err := store.GetTagRule(ctx, "SHELL WASH STATION")
	require.NoError(t, err)
	assert.Equal(t, "car", rule.Tag)
}

func TestEngine_AutoTagNeverOverwrites(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.ApplyTag(ctx, "STARBUCKS", "coffee"))
	require.NoError(t, eng.ApplyTag(ctx, "STARBUCKS STORE #123", "treats"))

	saveWorking(t, store, "2024-01-15", "STARBUCKS STORE #123", "", "-5.40")

	tagged, err := eng.AutoTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, tagged)

	// The explicit rule survives untouched.
	rule, err := store.GetTagRule(ctx, "STARBUCKS STORE #123")
	require.NoError(t, err)
	assert.Equal(t, "treats", rule.Tag)
	assert.Equal(t, model.TagSourceManual, rule.Source)
}

func TestEngine_AutoTagChaining(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.ApplyTag(ctx, "UBER EATS", "food"))

	// "UBER" matches the seed rule by reverse containment. "UBER TRIP 123"
	// matches no original rule in either direction and only tags because
	// the newly created "UBER" rule joins the live set.
	saveWorking(t, store, "2024-01-15", "UBER", "", "-12.00")
	saveWorking(t, store, "2024-01-16", "UBER TRIP 123", "", "-14.00")

	tagged, err := eng.AutoTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, tagged)
}

func TestEngine_TagAllMatching(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	saveWorking(t, store, "2024-01-15", "AMAZON.COM ORDER 111", "", "-10.00")
	saveWorking(t, store, "2024-01-16", "AMAZON.COM ORDER 111", "", "-10.00")
	saveWorking(t, store, "2024-01-17", "AMAZON MKTPLACE", "", "-25.00")
	saveWorking(t, store, "2024-01-18", "STARBUCKS #123", "", "-5.40")

	affected, err := eng.TagAllMatching(ctx, "AMAZON", "shopping")
	require.NoError(t, err)
	assert.Equal(t, 2, affected)

	rules, err := store.GetAllTagRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	for _, rule := range rules {
		assert.Equal(t, "shopping", rule.Tag)
		assert.Equal(t, model.TagSourceBulk, rule.Source)
	}
}

func TestEngine_TagAllMatchingBlankTag(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	saveWorking(t, store, "2024-01-15", "AMAZON.COM ORDER", "", "-10.00")

	_, err := eng.TagAllMatching(ctx, "AMAZON", "   ")
	assert.ErrorIs(t, err, common.ErrValidation)

	// Nothing written.
	rules, err := store.GetAllTagRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestEngine_PromoteTaggedToHistory(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	saveWorking(t, store, "2024-01-15", "STARBUCKS #123", "Starbucks", "-5.40")
	saveWorking(t, store, "2024-01-16", "AMAZON.COM ORDER", "Amazon", "-31.99")
	saveWorking(t, store, "2024-01-17", "MYSTERY CHARGE", "", "-9.99")

	require.NoError(t, eng.ApplyTag(ctx, "STARBUCKS #123", "coffee"))
	require.NoError(t, eng.ApplyTag(ctx, "AMAZON.COM ORDER", "shopping"))

	promoted, err := eng.PromoteTaggedToHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, promoted)

	records, err := store.GetHistoryRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "coffee", records[0].Tag)
	assert.False(t, records[0].PromotedAt.IsZero())

	// Untagged records stay in the working set; tag rules survive.
	stats, err := eng.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 2, stats.HistoryRecords)

	rules, err := store.GetAllTagRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestEngine_PromoteTwiceDoesNotDuplicate(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	saveWorking(t, store, "2024-01-15", "STARBUCKS #123", "Starbucks", "-5.40")
	require.NoError(t, eng.ApplyTag(ctx, "STARBUCKS #123", "coffee"))

	promoted, err := eng.PromoteTaggedToHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	// The same row re-imported promotes to zero inserts but still leaves
	// the working set.
	saveWorking(t, store, "2024-01-15", "STARBUCKS #123", "Starbucks", "-5.40")

	promoted, err = eng.PromoteTaggedToHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)

	stats, err := eng.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRecords)
	assert.Equal(t, 1, stats.HistoryRecords)
}

func TestEngine_PromoteNothingTagged(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	saveWorking(t, store, "2024-01-15", "MYSTERY CHARGE", "", "-9.99")

	promoted, err := eng.PromoteTaggedToHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)

	stats, err := eng.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecords)
}
