package templating

import (
	"fmt"
	"io"
	"os"

	"github.com/valyala/fasttemplate"
)

// Engine renders templates against a set of variables.
type Engine struct {
	StartTag string
	EndTag   string
}

// Render substitutes vars into tpl.
func (en *Engine) Render(tpl string, vars map[string]string) string {
	startTag, endTag := en.tags()

	return fasttemplate.ExecuteStringStd(
		tpl, startTag, endTag, tagValues(vars),
	)
}

// RenderFile reads the template at tplPath, substitutes vars and
// writes the result to outPath, replacing any existing file. If
// executable is true the output file receives mode 0755 instead
// of 0644.
func (en *Engine) RenderFile(
	tplPath string,
	outPath string,
	vars map[string]string,
	executable bool,
) (retErr error) {
	const errCtx = "rendering template"

	content, err := os.ReadFile(tplPath) //nolint:gosec // caller-provided path
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	var perm os.FileMode = 0o644
	if executable {
		perm = 0o755
	}

	fi, err := os.OpenFile( //nolint:gosec // caller-provided path
		outPath,
		os.O_RDWR|os.O_CREATE|os.O_TRUNC,
		perm,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	if err := en.execute(fi, string(content), vars); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func (en *Engine) execute(
	w io.Writer,
	tpl string,
	vars map[string]string,
) error {
	startTag, endTag := en.tags()

	_, err := fasttemplate.ExecuteStd(
		tpl, startTag, endTag, w, tagValues(vars),
	)

	return err //nolint:wrapcheck // wrapped by caller
}

// tags returns the configured start/end tags, falling
// back to double-brace defaults.
func (en *Engine) tags() (string, string) {
	startTag := en.StartTag
	if startTag == "" {
		startTag = "{{"
	}

	endTag := en.EndTag
	if endTag == "" {
		endTag = "}}"
	}

	return startTag, endTag
}

func tagValues(vars map[string]string) map[string]interface{} {
	ctx := make(map[string]interface{}, len(vars))
	for key, val := range vars {
		ctx[key] = val
	}

	return ctx
}
