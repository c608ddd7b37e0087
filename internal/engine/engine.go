// Package engine implements the tagging engine: tag rule management,
// two-phase tag propagation, bulk tagging by search, and promotion of
// tagged working records into history.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/tagwise/tagwise/internal/common"
	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"
)

// Engine coordinates tagging operations over the persistence layer.
type Engine struct {
	storage service.Storage
}

// New creates a tagging engine backed by the given storage.
func New(storage service.Storage) *Engine {
	return &Engine{storage: storage}
}

// ApplyTag upserts a tag rule for a description. Reapplying the same pair
// is a no-op in effect.
func (e *Engine) ApplyTag(ctx context.Context, description, tag string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description must not be blank", common.ErrValidation)
	}
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("%w: tag must not be blank", common.ErrValidation)
	}

	rule := &model.TagRule{
		Description: description,
		Tag:         tag,
		Source:      model.TagSourceManual,
	}
	return e.storage.SaveTagRule(ctx, rule)
}

// AutoTag propagates existing tag rules to untagged working descriptions in
// two phases: exact match first, then bidirectional containment with a
// frequency tie-break. Descriptions that already hold a rule are never
// touched. Returns the number of descriptions newly tagged.
func (e *Engine) AutoTag(ctx context.Context) (int, error) {
	rules, err := e.storage.GetAllTagRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load tag rules: %w", err)
	}

	tagByDescription := make(map[string]string, len(rules))
	for _, rule := range rules {
		tagByDescription[rule.Description] = rule.Tag
	}

	untagged, err := e.storage.GetUntaggedDescriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load untagged descriptions: %w", err)
	}

	slog.Info("Auto-tagging transactions", "untagged_descriptions", len(untagged))

	// Phase 1: exact matches against the existing rule set. With a unique
	// description key this is normally a no-op; it guards rule sets whose
	// keys are not canonical.
	exactApplied := 0
	var remaining []string
	for _, description := range untagged {
		tag, ok := tagByDescription[description]
		if !ok {
			remaining = append(remaining, description)
			continue
		}
		if err := e.saveAutoRule(ctx, description, tag); err != nil {
			slog.Warn("Failed to apply exact-match tag, skipping",
				"description", description,
				"error", err)
			continue
		}
		exactApplied++
	}

	// Phase 2: containment matching in either direction, most frequent tag
	// wins. Newly applied rules take part in subsequent matches, the same
	// way the original set does.
	containmentApplied := 0
	for _, description := range remaining {
		tag, found := bestContainmentTag(description, tagByDescription)
		if !found {
			continue
		}
		if err := e.saveAutoRule(ctx, description, tag); err != nil {
			slog.Warn("Failed to apply containment tag, skipping",
				"description", description,
				"error", err)
			continue
		}
		tagByDescription[description] = tag
		containmentApplied++
	}

	total := exactApplied + containmentApplied
	slog.Info("Auto-tagging complete",
		"exact", exactApplied,
		"containment", containmentApplied,
		"total", total)

	return total, nil
}

func (e *Engine) saveAutoRule(ctx context.Context, description, tag string) error {
	return e.storage.SaveTagRule(ctx, &model.TagRule{
		Description: description,
		Tag:         tag,
		Source:      model.TagSourceAuto,
	})
}

// bestContainmentTag finds the most frequent tag among rules whose
// description contains the given one, or is contained by it,
// case-insensitively. Ties break to the lexicographically smaller tag so
// repeated runs pick the same winner.
func bestContainmentTag(description string, tagByDescription map[string]string) (string, bool) {
	target := strings.ToUpper(description)

	counts := make(map[string]int)
	for ruleDescription, tag := range tagByDescription {
		candidate := strings.ToUpper(ruleDescription)
		if strings.Contains(target, candidate) || strings.Contains(candidate, target) {
			counts[tag]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	best := tags[0]
	for _, tag := range tags[1:] {
		if counts[tag] > counts[best] {
			best = tag
		}
	}
	return best, true
}

// TagAllMatching upserts the given tag for every distinct working
// description containing the search term, case-insensitively. Returns the
// number of distinct descriptions affected. A blank tag is rejected before
// any write.
func (e *Engine) TagAllMatching(ctx context.Context, searchTerm, tag string) (int, error) {
	if strings.TrimSpace(tag) == "" {
		return 0, fmt.Errorf("%w: tag must not be blank", common.ErrValidation)
	}

	descriptions, err := e.storage.GetDistinctDescriptions(ctx, searchTerm)
	if err != nil {
		return 0, fmt.Errorf("failed to search descriptions: %w", err)
	}

	affected := 0
	for _, description := range descriptions {
		rule := &model.TagRule{
			Description: description,
			Tag:         tag,
			Source:      model.TagSourceBulk,
		}
		if err := e.storage.SaveTagRule(ctx, rule); err != nil {
			return affected, fmt.Errorf("failed to tag %q: %w", description, err)
		}
		affected++
	}

	slog.Info("Bulk tag applied",
		"search", searchTerm,
		"tag", tag,
		"descriptions", affected)

	return affected, nil
}

// PromoteTaggedToHistory moves every tagged working record into the history
// ledger and removes it from the working set. Rows whose natural key
// (date, description, vendor, amount) already exists in history are not
// inserted again, but their working copies are still deleted. The insert
// and delete share one transaction so a concurrent auto-tag run never sees
// a half-promoted state. Returns the number of rows inserted into history;
// tag rules are left untouched.
func (e *Engine) PromoteTaggedToHistory(ctx context.Context) (int, error) {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin promotion: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := tx.InsertTaggedIntoHistory(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	deleted, err := tx.DeleteTaggedWorkingRecords(ctx)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit promotion: %w", err)
	}

	slog.Info("Promoted tagged records to history",
		"inserted", inserted,
		"removed_from_working", deleted)

	return inserted, nil
}

// Stats returns the current counters of the working set and history.
func (e *Engine) Stats(ctx context.Context) (*service.WorkingStats, error) {
	return e.storage.GetWorkingStats(ctx)
}
