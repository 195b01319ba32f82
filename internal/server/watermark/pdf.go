package watermark

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const pdfStampDesc = "fontname:Helvetica, points:48, scalefactor:0.8 rel, rotation:45, opacity:0.35"

var stampPDF = func(rs io.ReadSeeker, w io.Writer, text string) error {
	wm, err := api.TextWatermark(text, pdfStampDesc, true, false, types.POINTS)
	if err != nil {
		return err
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.AddWatermarks(rs, w, nil, wm, conf)
}

// PDFStamper overlays the watermark text on every page.
type PDFStamper struct{}

func (PDFStamper) Stamp(_ context.Context, data []byte, text string) ([]byte, string, error) {
	var out bytes.Buffer
	if err := stampPDF(bytes.NewReader(data), &out, text); err != nil {
		return nil, "", fmt.Errorf("stamp pdf: %w", err)
	}
	return out.Bytes(), "application/pdf", nil
}
