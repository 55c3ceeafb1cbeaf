package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ludo-technologies/forbidscan/domain"
)

// ForbiddenCallsUseCase orchestrates the forbidden call check workflow
type ForbiddenCallsUseCase struct {
	service    domain.ForbiddenCallsService
	fileHelper *FileHelper
	formatter  domain.OutputFormatter
}

// NewForbiddenCallsUseCase creates a new forbidden calls use case
func NewForbiddenCallsUseCase(service domain.ForbiddenCallsService, formatter domain.OutputFormatter) *ForbiddenCallsUseCase {
	return &ForbiddenCallsUseCase{
		service:    service,
		fileHelper: NewFileHelper(),
		formatter:  formatter,
	}
}

// Execute collects the source files, checks them, and writes the report to
// req.OutputWriter when a formatter is configured
func (uc *ForbiddenCallsUseCase) Execute(ctx context.Context, req domain.ForbiddenCallsRequest) (*domain.ForbiddenCallsResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	uc.fileHelper.WithGitignore(req.RespectGitignore)
	files, err := ResolveFilePaths(
		uc.fileHelper,
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}

	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no supported source files found in the specified paths", nil)
	}

	req.Paths = files

	response, err := uc.service.Analyze(ctx, req)
	if err != nil {
		var domainErr domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewAnalysisError("forbidden call analysis failed", err)
	}

	if uc.formatter != nil {
		writer := req.OutputWriter
		if writer == nil {
			writer = os.Stdout
		}
		if err := uc.formatter.Write(response, req.OutputFormat, writer); err != nil {
			return response, err
		}
	}

	return response, nil
}

// AnalyzeFile checks a single file
func (uc *ForbiddenCallsUseCase) AnalyzeFile(ctx context.Context, filePath string, req domain.ForbiddenCallsRequest) (*domain.ForbiddenCallsResponse, error) {
	if !uc.fileHelper.IsValidSourceFile(filePath) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a supported source file: %s", filePath), nil)
	}

	exists, err := uc.fileHelper.FileExists(filePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(filePath, err)
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(filePath, fmt.Errorf("file does not exist"))
	}

	return uc.service.AnalyzeFile(ctx, filePath, req)
}

// validateRequest validates the forbidden calls request
func (uc *ForbiddenCallsUseCase) validateRequest(req domain.ForbiddenCallsRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}

	if req.MaxGoroutines < 0 {
		return fmt.Errorf("max goroutines cannot be negative")
	}

	if req.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

// ForbiddenCallsUseCaseBuilder provides a builder pattern for creating ForbiddenCallsUseCase
type ForbiddenCallsUseCaseBuilder struct {
	service    domain.ForbiddenCallsService
	fileHelper *FileHelper
	formatter  domain.OutputFormatter
}

// NewForbiddenCallsUseCaseBuilder creates a new builder
func NewForbiddenCallsUseCaseBuilder() *ForbiddenCallsUseCaseBuilder {
	return &ForbiddenCallsUseCaseBuilder{}
}

// WithService sets the forbidden calls service
func (b *ForbiddenCallsUseCaseBuilder) WithService(service domain.ForbiddenCallsService) *ForbiddenCallsUseCaseBuilder {
	b.service = service
	return b
}

// WithFileHelper sets the file helper
func (b *ForbiddenCallsUseCaseBuilder) WithFileHelper(fileHelper *FileHelper) *ForbiddenCallsUseCaseBuilder {
	b.fileHelper = fileHelper
	return b
}

// WithFormatter sets the output formatter
func (b *ForbiddenCallsUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *ForbiddenCallsUseCaseBuilder {
	b.formatter = formatter
	return b
}

// Build creates the ForbiddenCallsUseCase with the configured dependencies
func (b *ForbiddenCallsUseCaseBuilder) Build() (*ForbiddenCallsUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("forbidden calls service is required")
	}

	uc := &ForbiddenCallsUseCase{
		service:    b.service,
		fileHelper: b.fileHelper,
		formatter:  b.formatter,
	}

	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}

	return uc, nil
}
