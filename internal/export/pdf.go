package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF writes a single-page PDF holding the rasterized report. Nothing is
// written to w unless the whole document was built.
func PDF(w io.Writer, r Report) error {
	var img bytes.Buffer
	if err := PNG(&img, r); err != nil {
		return fmt.Errorf("export: rasterize: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	var doc bytes.Buffer
	if err := api.ImportImages(nil, &doc, []io.Reader{&img}, pdfcpu.DefaultImportConfig(), conf); err != nil {
		return fmt.Errorf("export: build pdf: %w", err)
	}

	if _, err := io.Copy(w, &doc); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}
