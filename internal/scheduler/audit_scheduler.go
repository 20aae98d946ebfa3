package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
)

// AuditScheduler runs the read-only taxonomy audit on a cron schedule and logs
// its findings. It never repairs anything.
type AuditScheduler struct {
	cron         *cron.Cron
	schedule     string
	auditService service.AuditService
}

func NewAuditScheduler(auditService service.AuditService, schedule string) *AuditScheduler {
	return &AuditScheduler{
		cron:         cron.New(),
		schedule:     schedule,
		auditService: auditService,
	}
}

func (s *AuditScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for taxonomy audit", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Taxonomy audit scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce performs one audit and logs the summary.
func (s *AuditScheduler) RunOnce() {
	report, err := s.auditService.RunAudit()
	if err != nil {
		logger.Error("Scheduled taxonomy audit failed", err)
		return
	}

	fields := map[string]interface{}{
		"total_duplicates":    report.Summary.TotalDuplicates,
		"non_canonical_codes": report.Summary.NonCanonicalCodes,
		"underscore_codes":    report.Summary.UnderscoreCodes,
		"orphans":             report.Summary.Orphans,
		"missing_seeded":      len(report.MissingSeeded),
	}
	if report.Summary.TotalDuplicates > 0 || report.Summary.NonCanonicalCodes > 0 ||
		report.Summary.Orphans > 0 || len(report.MissingSeeded) > 0 {
		logger.Warn("Scheduled taxonomy audit found problems", fields)
		return
	}
	logger.Info("Scheduled taxonomy audit clean", fields)
}

func (s *AuditScheduler) Stop() {
	logger.Info("Stopping taxonomy audit scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Taxonomy audit scheduler stopped", nil)
}
