package scheduler

import (
	"errors"
	"testing"

	"github.com/stickerverse/sticker-catalog/internal/app/service"
	"github.com/stretchr/testify/assert"
)

type stubAuditService struct {
	calls  int
	report *service.AuditReport
	err    error
}

func (s *stubAuditService) RunAudit() (*service.AuditReport, error) {
	s.calls++
	return s.report, s.err
}

func TestAuditScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := NewAuditScheduler(&stubAuditService{}, "not a cron spec")
	assert.Error(t, s.Start())
}

func TestAuditScheduler_StartAndStop(t *testing.T) {
	s := NewAuditScheduler(&stubAuditService{}, "0 4 * * *")
	assert.NoError(t, s.Start())
	s.Stop()
}

func TestAuditScheduler_RunOnce(t *testing.T) {
	clean := &stubAuditService{report: &service.AuditReport{}}
	NewAuditScheduler(clean, "@daily").RunOnce()
	assert.Equal(t, 1, clean.calls)

	dirty := &stubAuditService{report: &service.AuditReport{Summary: service.AuditSummary{TotalDuplicates: 2}}}
	NewAuditScheduler(dirty, "@daily").RunOnce()
	assert.Equal(t, 1, dirty.calls)

	failing := &stubAuditService{err: errors.New("db down")}
	NewAuditScheduler(failing, "@daily").RunOnce()
	assert.Equal(t, 1, failing.calls)
}
