package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
	providerUseCase "github.com/allisson/tradejournal/internal/provider/usecase"
)

// RunLintCatalog validates provider catalogs and prints every issue found. With a
// filePath the catalog file (YAML or JSON) is checked and the database is not touched;
// otherwise every stored provider is checked. Returns an error when any provider has
// issues so the command can gate deployments.
func RunLintCatalog(
	ctx context.Context,
	useCase providerUseCase.ProviderUseCase,
	logger *slog.Logger,
	writer io.Writer,
	filePath string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var (
		reports []*providerDomain.LintReport
		checked int
	)

	if filePath != "" {
		providers, err := readManifest(filePath)
		if err != nil {
			return err
		}
		checked = len(providers)
		reports = lintProviders(providers)
	} else {
		var err error
		reports, err = useCase.Lint(ctx)
		if err != nil {
			return fmt.Errorf("failed to lint stored catalogs: %w", err)
		}
	}

	logger.Info("catalog lint completed",
		slog.String("file", filePath),
		slog.Int("providers_with_issues", len(reports)),
	)

	if format == "json" {
		if err := writeJSON(writer, reports); err != nil {
			return err
		}
	} else {
		writeLintText(writer, reports, checked)
	}

	if len(reports) > 0 {
		return fmt.Errorf("%d provider catalog(s) have issues", len(reports))
	}
	return nil
}

// RunImportCatalog loads a catalog file and upserts every provider in it. Nothing is
// written unless every catalog in the file is valid.
func RunImportCatalog(
	ctx context.Context,
	useCase providerUseCase.ProviderUseCase,
	logger *slog.Logger,
	writer io.Writer,
	filePath string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	providers, err := readManifest(filePath)
	if err != nil {
		return err
	}

	if reports := lintProviders(providers); len(reports) > 0 {
		writeLintText(writer, reports, len(providers))
		return fmt.Errorf("%d provider catalog(s) have issues, nothing imported", len(reports))
	}

	result, err := useCase.Import(ctx, providers)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	logger.Info("catalog imported",
		slog.String("file", filePath),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
	)

	if format == "json" {
		return writeJSON(writer, map[string]int{
			"created": result.Created,
			"updated": result.Updated,
		})
	}

	_, _ = fmt.Fprintf(writer, "Imported %d provider(s): %d created, %d updated\n",
		len(providers), result.Created, result.Updated)
	return nil
}

func readManifest(filePath string) ([]*providerDomain.Provider, error) {
	if filePath == "" {
		return nil, fmt.Errorf("catalog file is required")
	}
	data, err := os.ReadFile(filePath) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return providerDomain.ParseManifest(data)
}

func lintProviders(providers []*providerDomain.Provider) []*providerDomain.LintReport {
	reports := make([]*providerDomain.LintReport, 0)
	for _, p := range providers {
		if issues := providerDomain.LintProvider(p); len(issues) > 0 {
			reports = append(reports, &providerDomain.LintReport{Name: p.Name, Issues: issues})
		}
	}
	return reports
}

func writeLintText(writer io.Writer, reports []*providerDomain.LintReport, checked int) {
	if len(reports) == 0 {
		if checked > 0 {
			_, _ = fmt.Fprintf(writer, "Catalog OK: %d provider(s) checked\n", checked)
		} else {
			_, _ = fmt.Fprintln(writer, "Catalog OK")
		}
		return
	}
	for _, r := range reports {
		_, _ = fmt.Fprintf(writer, "%s:\n", r.Name)
		for _, issue := range r.Issues {
			_, _ = fmt.Fprintf(writer, "  - %s\n", issue)
		}
	}
}
