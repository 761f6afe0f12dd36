package companies

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cruiseops/utils"

	"github.com/disintegration/imaging"
)

const logoWidth = 300

// SaveLogo resizes the uploaded image to the logo width, stores it as PNG and
// records its URL in branding.logo_url.
func (s *Service) SaveLogo(ctx context.Context, companyID string, src io.Reader) (string, error) {
	cs, err := s.Settings(ctx, companyID)
	if err != nil {
		return "", err
	}
	img, err := imaging.Decode(src)
	if err != nil {
		return "", utils.Invalid("Unsupported image: %v", err)
	}
	thumb := imaging.Resize(img, logoWidth, 0, imaging.Lanczos)

	dir := filepath.Join(s.uploadDir, "logos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create logo dir: %w", err)
	}
	name := filepath.Base(companyID) + ".png"
	if err := imaging.Save(thumb, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("save logo: %w", err)
	}

	url := "/static/uploads/logos/" + name
	cs.Branding["logo_url"] = url
	return url, s.save(ctx, cs)
}
