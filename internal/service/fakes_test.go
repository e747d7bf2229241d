package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tonton108/plc-dashboard/internal/domain"
)

// fakeEquipmentRepo 仅用于单元测试（内存设备目录）
type fakeEquipmentRepo struct {
	mu         sync.Mutex
	equipments []*domain.Equipment
}

func newFakeEquipmentRepo(ids ...string) *fakeEquipmentRepo {
	repo := &fakeEquipmentRepo{}
	for i, id := range ids {
		repo.equipments = append(repo.equipments, &domain.Equipment{
			ID:          int64(i + 1),
			EquipmentID: id,
			Status:      "registered",
		})
	}
	return repo
}

func (f *fakeEquipmentRepo) Resolve(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.equipments {
		if e.EquipmentID == equipmentID {
			return e, nil
		}
	}
	return nil, fmt.Errorf("equipment %s: %w", equipmentID, domain.ErrEquipmentNotFound)
}

func (f *fakeEquipmentRepo) List(ctx context.Context) ([]*domain.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Equipment, len(f.equipments))
	copy(out, f.equipments)
	return out, nil
}

// fakeMeasurementRepo 仅用于单元测试（内存 logs 表）
type fakeMeasurementRepo struct {
	mu      sync.Mutex
	rows    []*domain.Measurement
	nextID  int64
	failAll bool // 注入存储故障

	insertCalls int
}

func newFakeMeasurementRepo() *fakeMeasurementRepo {
	return &fakeMeasurementRepo{nextID: 1}
}

func (f *fakeMeasurementRepo) Insert(ctx context.Context, m *domain.Measurement) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.failAll {
		return 0, fmt.Errorf("storage failure")
	}
	stored := *m
	stored.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, &stored)
	return stored.ID, nil
}

func (f *fakeMeasurementRepo) ListRange(ctx context.Context, equipmentKey int64, from, to time.Time, limit int) ([]*domain.Measurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("storage failure")
	}
	var out []*domain.Measurement
	for _, m := range f.rows {
		if m.EquipmentID != equipmentKey {
			continue
		}
		if m.Timestamp.Before(from) || !m.Timestamp.Before(to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteBatchBefore 与 SQL 实现一致：严格早于 cutoff 的记录才会被删除
func (f *fakeMeasurementRepo) DeleteBatchBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, fmt.Errorf("storage failure")
	}
	var deleted int64
	kept := f.rows[:0]
	for _, m := range f.rows {
		if deleted < int64(batchSize) && m.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.rows = kept
	return deleted, nil
}

func (f *fakeMeasurementRepo) CountBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.rows {
		if m.Timestamp.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (f *fakeMeasurementRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type dailyKey struct {
	equipment int64
	date      string
}

type monthlyKey struct {
	equipment int64
	year      int
	month     int
}

// fakeSummaryRepo 仅用于单元测试（内存集计表，替换语义与 SQL 实现一致）
type fakeSummaryRepo struct {
	mu      sync.Mutex
	daily   map[dailyKey]*domain.DailySummary
	monthly map[monthlyKey]*domain.MonthlySummary

	failEquipment int64 // 指定设备的写入注入失败（测试失败隔离）
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{
		daily:   make(map[dailyKey]*domain.DailySummary),
		monthly: make(map[monthlyKey]*domain.MonthlySummary),
	}
}

func (f *fakeSummaryRepo) ReplaceDaily(ctx context.Context, s *domain.DailySummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEquipment != 0 && s.EquipmentID == f.failEquipment {
		return fmt.Errorf("storage failure")
	}
	stored := *s
	f.daily[dailyKey{s.EquipmentID, s.Date.Format("2006-01-02")}] = &stored
	return nil
}

func (f *fakeSummaryRepo) ReplaceMonthly(ctx context.Context, s *domain.MonthlySummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEquipment != 0 && s.EquipmentID == f.failEquipment {
		return fmt.Errorf("storage failure")
	}
	stored := *s
	f.monthly[monthlyKey{s.EquipmentID, s.Year, s.Month}] = &stored
	return nil
}

func (f *fakeSummaryRepo) ListDailyRange(ctx context.Context, equipmentKey int64, from, to time.Time) ([]*domain.DailySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.DailySummary
	for _, s := range f.daily {
		if s.EquipmentID != equipmentKey {
			continue
		}
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeSummaryRepo) ListDailyForMonth(ctx context.Context, equipmentKey int64, year, month int) ([]*domain.DailySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.DailySummary
	for _, s := range f.daily {
		if s.EquipmentID != equipmentKey {
			continue
		}
		if s.Date.Year() == year && int(s.Date.Month()) == month {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeSummaryRepo) ListMonthlyByYear(ctx context.Context, equipmentKey int64, year int) ([]*domain.MonthlySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.MonthlySummary
	for _, s := range f.monthly {
		if s.EquipmentID == equipmentKey && s.Year == year {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (f *fakeSummaryRepo) CountDaily(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.daily)), nil
}

func (f *fakeSummaryRepo) CountMonthly(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.monthly)), nil
}

func (f *fakeSummaryRepo) getDaily(equipmentKey int64, date string) *domain.DailySummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.daily[dailyKey{equipmentKey, date}]
}

func (f *fakeSummaryRepo) getMonthly(equipmentKey int64, year, month int) *domain.MonthlySummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.monthly[monthlyKey{equipmentKey, year, month}]
}

// recordingBroadcaster 仅用于单元测试（记录发布的主题顺序，可注入失败）
type recordingBroadcaster struct {
	mu       sync.Mutex
	topics   []string
	payloads []interface{}
	fail     bool
}

func (b *recordingBroadcaster) Publish(ctx context.Context, topic string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return fmt.Errorf("broadcast failure")
	}
	b.topics = append(b.topics, topic)
	b.payloads = append(b.payloads, payload)
	return nil
}

func (b *recordingBroadcaster) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.topics))
	copy(out, b.topics)
	return out
}

// 指针构造辅助
func intPtr(v int) *int          { return &v }
func int64Ptr(v int64) *int64    { return &v }
func floatPtr(v float64) *float64 { return &v }
