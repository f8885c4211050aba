package compose

import (
	"context"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Output Validation
// =============================================================================

// ValidateOutput runs a synthesized config through the compose-go loader and
// reports anything docker-compose itself would reject. Interpolation is
// skipped: generated files are literal, and secret values may contain `$`.
func ValidateOutput(ctx context.Context, projectName, file string, content []byte) error {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return &ValidationError{File: file, Err: err}
	}

	_, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Filename: file,
				Content:  content,
				Config:   dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(projectName, false)
		opts.SkipValidation = false
		opts.SkipInterpolation = true
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return &ValidationError{File: file, Err: err}
	}
	return nil
}
