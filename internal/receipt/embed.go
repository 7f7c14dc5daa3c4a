package receipt

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// the screenshot sits unrotated at the bottom of the page, at a third of its width.
const imageDescription = "pos:bc, off:0 40, scalefactor:.33 rel, rot:0, op:1"

func init() {
	// pdfcpu otherwise writes a default config file into the user's config directory
	api.DisableConfigDir()
}

// EmbedImage stamps the image onto every page of the pdf, rewriting the pdf in place.
func EmbedImage(pdfPath, imagePath string) error {
	conf := model.NewDefaultConfiguration()
	// plain objects keep the image dictionary readable by simple tools
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	err := api.AddImageWatermarksFile(pdfPath, "", nil, true, imagePath, imageDescription, conf)
	if err != nil {
		return fmt.Errorf("embed %s into %s: %w", imagePath, pdfPath, err)
	}
	return nil
}
