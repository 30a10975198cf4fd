package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ghpush/internal/repos/shared"
)

const (
	reportFormatTextValueConstant           = "text"
	reportFormatYAMLValueConstant           = "yaml"
	reportFormatJSONValueConstant           = "json"
	unsupportedReportFormatTemplateConstant = "unsupported report format %q"
	ignoredReportTemplateConstant           = "Ignored Upload %s\n"
	writtenReportTemplateConstant           = "Successfully %s %s to branch %s in repository: %s\n"
	failedReportTemplateConstant            = "Failed to upload %s to branch %s: %s\n"
	reportIndentWidthConstant               = 2
	reportJSONIndentConstant                = "  "
)

// ReportFormat selects how upload results are rendered.
type ReportFormat string

// Report formats.
const (
	ReportFormatText ReportFormat = ReportFormat(reportFormatTextValueConstant)
	ReportFormatYAML ReportFormat = ReportFormat(reportFormatYAMLValueConstant)
	ReportFormatJSON ReportFormat = ReportFormat(reportFormatJSONValueConstant)
)

// ParseReportFormat normalizes textual report formats. Empty input selects ReportFormatText.
func ParseReportFormat(formatValue string) (ReportFormat, error) {
	trimmedValue := strings.ToLower(strings.TrimSpace(formatValue))
	switch ReportFormat(trimmedValue) {
	case "", ReportFormatText:
		return ReportFormatText, nil
	case ReportFormatYAML:
		return ReportFormatYAML, nil
	case ReportFormatJSON:
		return ReportFormatJSON, nil
	default:
		return "", fmt.Errorf(unsupportedReportFormatTemplateConstant, formatValue)
	}
}

// RenderReport writes the upload result to writer in the requested format.
func RenderReport(writer io.Writer, result Result, format ReportFormat) error {
	switch format {
	case ReportFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(reportIndentWidthConstant)
		if encodeError := encoder.Encode(result); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	case ReportFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", reportJSONIndentConstant)
		return encoder.Encode(result)
	case ReportFormatText, "":
		renderText(shared.NewWriterReporter(writer), result)
		return nil
	default:
		return fmt.Errorf(unsupportedReportFormatTemplateConstant, format)
	}
}

func renderText(reporter shared.Reporter, result Result) {
	for _, fileResult := range result.Files {
		ReportFileResult(reporter, result.Repository, result.Branch, fileResult)
	}
}

// ReportFileResult prints the one-line text form of a file result.
func ReportFileResult(reporter shared.Reporter, repository string, branch string, fileResult FileResult) {
	switch fileResult.Action {
	case ActionIgnored:
		reporter.Printf(ignoredReportTemplateConstant, fileResult.LocalPath)
	case ActionUploaded, ActionUpdated:
		reporter.Printf(writtenReportTemplateConstant, fileResult.Action, fileResult.RepositoryPath, branch, repository)
	case ActionFailed:
		reporter.Printf(failedReportTemplateConstant, fileResult.RepositoryPath, branch, fileResult.Detail)
	}
}
