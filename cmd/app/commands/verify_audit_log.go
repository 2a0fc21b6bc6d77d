package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	auditUseCase "github.com/allisson/credentials/internal/audit/usecase"
)

// RunVerifyAuditLog walks the audit hash chain within a time range and reports
// any tampering or sequence gaps. An empty date leaves that bound open.
//
// Requirements: Database must be migrated and accessible.
func RunVerifyAuditLog(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	start, err := parseOptionalDate(startDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	end, err := parseOptionalDate(endDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	if start != nil && end != nil && !end.After(*start) {
		return fmt.Errorf("end date must be after start date")
	}

	logger.Info("verifying audit log chain")

	report, err := auditLogUseCase.Verify(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify audit log: %w", err)
	}

	logger.Info("verification completed",
		slog.Int64("total_checked", report.TotalChecked),
		slog.Int64("valid", report.ValidCount),
		slog.Int64("invalid", report.InvalidCount),
	)

	if format == "json" {
		if err := outputJSON(writer, report); err != nil {
			return err
		}
	} else {
		outputVerifyText(writer, report)
	}

	if report.InvalidCount > 0 {
		return fmt.Errorf("integrity check failed: %d invalid entr(ies)", report.InvalidCount)
	}
	if report.SequenceGapsFound {
		return fmt.Errorf("integrity check failed: sequence gaps found")
	}

	return nil
}

// parseOptionalDate parses "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS". An empty
// string returns nil, leaving the bound open.
func parseOptionalDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02 15:04:05", dateStr)
	if err == nil {
		return &t, nil
	}

	t, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid date format (expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS): %s",
			dateStr,
		)
	}

	return &t, nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, report *auditDomain.VerificationReport) {
	_, _ = fmt.Fprintf(writer, "Audit Log Chain Verification\n")
	_, _ = fmt.Fprintf(writer, "============================\n\n")

	_, _ = fmt.Fprintf(writer, "Total Checked:   %d\n", report.TotalChecked)
	_, _ = fmt.Fprintf(writer, "Valid:           %d\n", report.ValidCount)
	_, _ = fmt.Fprintf(writer, "Invalid:         %d\n", report.InvalidCount)
	_, _ = fmt.Fprintf(writer, "Sequence Range:  %d - %d\n\n", report.FirstSequence, report.LastSequence)

	switch {
	case report.InvalidCount > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d entr(ies) failed the chain check!\n\n", report.InvalidCount)
		_, _ = fmt.Fprintf(writer, "Invalid Sequences:\n")
		for _, sequence := range report.InvalidSequences {
			_, _ = fmt.Fprintf(writer, "  - %d\n", sequence)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.SequenceGapsFound:
		_, _ = fmt.Fprintf(writer, "WARNING: sequence gaps found in the checked range!\n\n")
		_, _ = fmt.Fprintf(writer, "Status: FAILED\n")
	case report.TotalChecked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No entries found in specified time range\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}
