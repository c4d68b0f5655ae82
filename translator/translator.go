// Package translator wraps the ANGLE-based shader translator. It validates
// ESSL 3.00 sources and rewrites them for desktop GL, reporting the mapped
// name of every variable it keeps.
package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/gogradient/gpu"
	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the process-wide translator, creating it on first use.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Result is a translated stage.
type Result struct {
	Code string
	// Names maps source identifiers to the identifiers used in Code.
	Names map[string]string
}

// Translate validates source and rewrites it as GLSL 4.10 core, or as ESSL
// when essl is set. Translation errors carry the translator diagnostic.
func Translate(source string, stage gpu.Stage, essl bool) (*Result, error) {
	t, err := Get()
	if err != nil {
		return nil, fmt.Errorf("shader translator unavailable: %w", err)
	}
	outputFormat := gst.OutputFormatGLSL410
	if essl {
		outputFormat = gst.OutputFormatESSL
	}
	out, err := t.TranslateShader(source, stage.String(), gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, err
	}
	res := &Result{Code: out.Code, Names: make(map[string]string, len(out.Variables))}
	for name, v := range out.Variables {
		res.Names[name] = v.MappedName
	}
	return res, nil
}

// Validate reports whether source is a valid ESSL 3.00 stage.
func Validate(source string, stage gpu.Stage) error {
	_, err := Translate(source, stage, true)
	return err
}
