package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	credentialUseCase "github.com/allisson/tradejournal/internal/credential/usecase"
)

type rewrapReport struct {
	Category  credentialDomain.Category `json:"category"`
	Scanned   int                       `json:"scanned"`
	Rewrapped int                       `json:"rewrapped"`
	Failed    int                       `json:"failed"`
}

// RunRewrapCredentials re-encrypts every credential whose blob is not under the active
// key. An empty category walks every category. Rows that cannot be decrypted are
// reported as failed; the command returns an error when any failed so the retired key
// is not removed by mistake.
func RunRewrapCredentials(
	ctx context.Context,
	useCase credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	category string,
	batchSize int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	categories := credentialDomain.Categories
	if category != "" {
		parsed, err := credentialDomain.ParseCategory(category)
		if err != nil {
			return err
		}
		categories = []credentialDomain.Category{parsed}
	}

	logger.Info("starting credential rewrap", slog.Int("batch_size", batchSize))

	reports := make([]rewrapReport, 0, len(categories))
	failed := 0
	for _, c := range categories {
		result, err := useCase.Rewrap(ctx, c, batchSize)
		if err != nil {
			return fmt.Errorf("failed to rewrap %s credentials: %w", c, err)
		}

		logger.Info("rewrapped credentials",
			slog.String("category", string(c)),
			slog.Int("scanned", result.Scanned),
			slog.Int("rewrapped", result.Rewrapped),
			slog.Int("failed", result.Failed),
		)

		reports = append(reports, rewrapReport{
			Category:  c,
			Scanned:   result.Scanned,
			Rewrapped: result.Rewrapped,
			Failed:    result.Failed,
		})
		failed += result.Failed
	}

	if format == "json" {
		if err := writeJSON(writer, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			_, _ = fmt.Fprintf(writer, "%-6s scanned=%d rewrapped=%d failed=%d\n",
				r.Category, r.Scanned, r.Rewrapped, r.Failed)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d credential(s) could not be decrypted and were left untouched", failed)
	}
	return nil
}
