package stack

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// StackFileError is returned when stack file content is not a valid
// compose document.
type StackFileError struct {
	Stack string
	Err   error
}

func (e *StackFileError) Error() string {
	return fmt.Sprintf("invalid stack file for %q: %v", e.Stack, e.Err)
}

func (e *StackFileError) Unwrap() error {
	return e.Err
}

// ValidateStackFile loads content with compose-go, interpolating env, and
// reports whether it describes at least one service. Nothing on disk is
// touched: extends, includes and env_file references are not followed.
func ValidateStackFile(ctx context.Context, name, content string, env map[string]string) error {
	if strings.TrimSpace(content) == "" {
		return &StackFileError{Stack: name, Err: fmt.Errorf("content is empty")}
	}

	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(content), &dict); err != nil {
		return &StackFileError{Stack: name, Err: fmt.Errorf("invalid YAML: %w", err)}
	}
	if dict == nil {
		return &StackFileError{Stack: name, Err: fmt.Errorf("content is not a YAML mapping")}
	}

	projectName := loader.NormalizeProjectName(name)
	if projectName == "" {
		projectName = "stack"
	}

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		WorkingDir:  ".",
		Environment: types.Mapping(env),
		ConfigFiles: []types.ConfigFile{
			{
				Filename: name,
				Content:  []byte(content),
				Config:   dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(projectName, false)
		opts.SkipNormalization = true
		opts.SkipExtends = true
		opts.SkipInclude = true
		opts.SkipResolveEnvironment = true
	})
	if err != nil {
		return &StackFileError{Stack: name, Err: err}
	}
	if len(project.Services) == 0 {
		return &StackFileError{Stack: name, Err: fmt.Errorf("no services defined")}
	}
	return nil
}

// RouteComposeLogs sends compose-go's logrus output to logger instead of
// stderr. Errors become warnings; everything else, such as the obsolete
// "version" attribute notice, is logged at debug level.
func RouteComposeLogs(logger *zap.SugaredLogger) {
	std := logrus.StandardLogger()
	std.SetOutput(io.Discard)
	std.ReplaceHooks(logrus.LevelHooks{})
	if logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		std.SetLevel(logrus.DebugLevel)
	} else {
		std.SetLevel(logrus.WarnLevel)
	}
	std.AddHook(composeLogHook{logger: logger})
}

type composeLogHook struct {
	logger *zap.SugaredLogger
}

func (h composeLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h composeLogHook) Fire(e *logrus.Entry) error {
	kv := make([]interface{}, 0, 2+2*len(e.Data))
	kv = append(kv, "source", "compose")
	for k, v := range e.Data {
		kv = append(kv, k, v)
	}
	if e.Level <= logrus.ErrorLevel {
		h.logger.Warnw(e.Message, kv...)
	} else {
		h.logger.Debugw(e.Message, kv...)
	}
	return nil
}
