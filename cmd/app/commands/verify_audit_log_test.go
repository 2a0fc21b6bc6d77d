package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	auditMocks "github.com/allisson/credentials/internal/audit/usecase/mocks"
)

func TestRunVerifyAuditLog(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	startDate := "2026-01-01"
	endDate := "2026-01-02"

	report := &auditDomain.VerificationReport{
		TotalChecked:  10,
		ValidCount:    10,
		FirstSequence: 1,
		LastSequence:  10,
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, mock.AnythingOfType("*time.Time"), mock.AnythingOfType("*time.Time")).
			Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, startDate, endDate, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Log Chain Verification")
		require.Contains(t, out.String(), "Status: PASSED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, mock.AnythingOfType("*time.Time"), mock.AnythingOfType("*time.Time")).
			Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, startDate, endDate, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(10), result["total_checked"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("open-bounds", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, "", "", "text")
		require.NoError(t, err)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-start-date", func(t *testing.T) {
		err := RunVerifyAuditLog(ctx, nil, logger, nil, "invalid", endDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid start date")
	})

	t.Run("integrity-failure", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		failureReport := &auditDomain.VerificationReport{
			TotalChecked:     10,
			ValidCount:       8,
			InvalidCount:     2,
			InvalidSequences: []uint64{4, 7},
		}
		mockUseCase.On("Verify", ctx, mock.AnythingOfType("*time.Time"), mock.AnythingOfType("*time.Time")).
			Return(failureReport, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, startDate, endDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed")
		require.Contains(t, out.String(), "WARNING: 2 entr(ies) failed the chain check!")
	})

	t.Run("sequence-gaps", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		gapReport := &auditDomain.VerificationReport{
			TotalChecked:      10,
			ValidCount:        10,
			SequenceGapsFound: true,
		}
		mockUseCase.On("Verify", ctx, mock.AnythingOfType("*time.Time"), mock.AnythingOfType("*time.Time")).
			Return(gapReport, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, startDate, endDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "sequence gaps found")
	})
}
