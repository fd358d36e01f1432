package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/educonnect/reengage-engine/internal/models"
)

// mockDispatchRepo is an in-memory DispatchRepository shared by the engine
// package tests
type mockDispatchRepo struct {
	dedup     map[string]*models.DedupRecord
	logs      []*models.DeliveryLog
	lookupErr error
	insertErr error
	logErr    error
}

func newMockDispatchRepo() *mockDispatchRepo {
	return &mockDispatchRepo{dedup: make(map[string]*models.DedupRecord)}
}

func dedupMapKey(leadID, campaignID int64) string {
	return fmt.Sprintf("%d:%d", leadID, campaignID)
}

func (m *mockDispatchRepo) GetDedupRecord(ctx context.Context, leadID, campaignID int64) (*models.DedupRecord, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.dedup[dedupMapKey(leadID, campaignID)], nil
}

func (m *mockDispatchRepo) InsertDedupRecord(ctx context.Context, rec *models.DedupRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	key := dedupMapKey(rec.LeadID, rec.CampaignID)
	if _, exists := m.dedup[key]; !exists {
		m.dedup[key] = rec
	}
	return nil
}

func (m *mockDispatchRepo) InsertDeliveryLog(ctx context.Context, entry *models.DeliveryLog) error {
	if m.logErr != nil {
		return m.logErr
	}
	m.logs = append(m.logs, entry)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLedger_RecordThenProcessed(t *testing.T) {
	repo := newMockDispatchRepo()
	ledger := NewLedger(repo, nil, DedupFailOpen, testLogger())
	ctx := context.Background()

	if ledger.Processed(ctx, 1, 10) {
		t.Fatal("pair should not be processed before any attempt")
	}

	ledger.Record(ctx, 1, 10, 5, models.DedupStatusSent)

	if !ledger.Processed(ctx, 1, 10) {
		t.Error("pair should be processed immediately after Record")
	}
	if ledger.Processed(ctx, 2, 10) {
		t.Error("a different lead must not be suppressed")
	}
	if ledger.Processed(ctx, 1, 11) {
		t.Error("a different campaign must not be suppressed")
	}
}

func TestLedger_FailedAttemptAlsoSuppresses(t *testing.T) {
	repo := newMockDispatchRepo()
	ledger := NewLedger(repo, nil, DedupFailOpen, testLogger())
	ctx := context.Background()

	ledger.Record(ctx, 3, 20, 5, models.DedupStatusFailed)

	if !ledger.Processed(ctx, 3, 20) {
		t.Error("a failed attempt must suppress re-sends too")
	}
}

func TestLedger_LookupErrorPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy DedupPolicy
		want   bool
	}{
		{name: "fail open treats errors as not processed", policy: DedupFailOpen, want: false},
		{name: "fail closed treats errors as processed", policy: DedupFailClosed, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockDispatchRepo()
			repo.lookupErr = errors.New("store unavailable")
			ledger := NewLedger(repo, nil, tt.policy, testLogger())

			if got := ledger.Processed(context.Background(), 1, 10); got != tt.want {
				t.Errorf("Processed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedger_RecordSwallowsInsertErrors(t *testing.T) {
	repo := newMockDispatchRepo()
	repo.insertErr = errors.New("store unavailable")
	ledger := NewLedger(repo, nil, DedupFailOpen, testLogger())

	// Must not panic or propagate
	ledger.Record(context.Background(), 1, 10, 5, models.DedupStatusSent)
}
