package services

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"country-api/models"
	"country-api/shared"

	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	summaryImageWidth  = 900
	summaryImageHeight = 600

	flagThumbWidth  = 64
	flagThumbHeight = 40
)

// SummaryImageService renders the fixed-layout summary report PNG:
// header band with totals, top-5 countries ranked by estimated GDP,
// footer caption. Rendering is best-effort and never fails the caller.
type SummaryImageService struct {
	outputPath string
	flagClient *http.Client
}

func NewSummaryImageService(outputPath string) *SummaryImageService {
	factory := shared.NewHTTPClientFactory(10 * time.Second)
	return &SummaryImageService{
		outputPath: outputPath,
		flagClient: factory.CreateOptimizedHTTPClient(10 * time.Second),
	}
}

// OutputPath returns the fixed path the summary image is written to.
func (s *SummaryImageService) OutputPath() string {
	return s.outputPath
}

// Generate renders the summary image for the given countries and returns
// the written path. On any internal failure it logs and returns "",
// leaving a previously generated file untouched.
func (s *SummaryImageService) Generate(countries []models.Country) (path string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Summary image generation panicked")
			path = ""
		}
	}()

	if err := os.MkdirAll(filepath.Dir(s.outputPath), 0o755); err != nil {
		logrus.WithError(err).Error("Failed to create summary image directory")
		return ""
	}

	titleFace, err := loadFontFace(gobold.TTF, 36)
	if err != nil {
		logrus.WithError(err).Error("Failed to load title font")
		return ""
	}
	subtitleFace, err := loadFontFace(goregular.TTF, 18)
	if err != nil {
		logrus.WithError(err).Error("Failed to load subtitle font")
		return ""
	}
	textFace, err := loadFontFace(goregular.TTF, 16)
	if err != nil {
		logrus.WithError(err).Error("Failed to load text font")
		return ""
	}

	dc := gg.NewContext(summaryImageWidth, summaryImageHeight)
	dc.SetHexColor("#f8fafc")
	dc.Clear()

	// Header band
	headerHeight := 110.0
	dc.SetHexColor("#1e40af")
	dc.DrawRectangle(0, 0, summaryImageWidth, headerHeight)
	dc.Fill()

	dc.SetFontFace(titleFace)
	dc.SetHexColor("#ffffff")
	dc.DrawString("Country Summary Report", 30, 58)

	dc.SetFontFace(subtitleFace)
	dc.DrawString(fmt.Sprintf("Total Countries: %d", len(countries)), 30, headerHeight-22)
	dateText := fmt.Sprintf("Last Refresh (UTC): %s", time.Now().UTC().Format("2006-01-02 15:04:05"))
	dc.DrawString(dateText, summaryImageWidth-400, headerHeight-22)

	// Divider
	yOffset := headerHeight + 20
	dc.SetHexColor("#c7d2fe")
	dc.SetLineWidth(2)
	dc.DrawLine(30, yOffset, summaryImageWidth-30, yOffset)
	dc.Stroke()

	dc.SetFontFace(subtitleFace)
	dc.SetHexColor("#0f172a")
	dc.DrawString("Top 5 Countries by Estimated GDP", 30, yOffset+35)

	topCountries := topByEstimatedGDP(countries, 5)

	startY := yOffset + 60
	rowHeight := 56.0

	if len(topCountries) == 0 {
		dc.SetFontFace(textFace)
		dc.SetHexColor("#475569")
		dc.DrawString("No GDP data available.", 30, startY+16)
	} else {
		for i, country := range topCountries {
			rowTop := startY + float64(i)*rowHeight

			dc.SetHexColor("#ffffff")
			dc.DrawRectangle(30, rowTop-6, summaryImageWidth-60, rowHeight-12)
			dc.Fill()

			textX := 30.0 + flagThumbWidth + 16
			if country.FlagURL != nil {
				if thumb := s.fetchFlagThumbnail(*country.FlagURL); thumb != nil {
					dc.DrawImage(thumb, 30, int(rowTop)-4)
				}
			}

			dc.SetFontFace(textFace)
			dc.SetHexColor("#0b1226")
			dc.DrawString(fmt.Sprintf("%d. %s", i+1, country.Name), textX, rowTop+12)
			dc.SetHexColor("#334155")
			dc.DrawString(fmt.Sprintf("Estimated GDP: $%s", formatThousands(*country.EstimatedGDP)), textX, rowTop+34)
		}
	}

	// Footer
	dc.SetHexColor("#e2e8f0")
	dc.SetLineWidth(1)
	dc.DrawLine(30, summaryImageHeight-60, summaryImageWidth-30, summaryImageHeight-60)
	dc.Stroke()
	dc.SetFontFace(subtitleFace)
	dc.SetHexColor("#64748b")
	dc.DrawString("Generated automatically by Country Currency & Exchange API", 30, summaryImageHeight-26)

	if err := dc.SavePNG(s.outputPath); err != nil {
		logrus.WithError(err).Error("Failed to save summary image")
		return ""
	}

	logrus.WithField("image_path", s.outputPath).Info("Summary image saved successfully")
	return s.outputPath
}

// fetchFlagThumbnail downloads and scales a flag image. Failures are
// tolerated silently so a bad flag URL never breaks the render.
func (s *SummaryImageService) fetchFlagThumbnail(url string) image.Image {
	if url == "" {
		return nil
	}

	response, err := s.flagClient.Get(url)
	if err != nil {
		logrus.WithField("flag_url", url).Debug("Flag fetch failed, omitting thumbnail")
		return nil
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil
	}

	decoded, _, err := image.Decode(response.Body)
	if err != nil {
		logrus.WithField("flag_url", url).Debug("Flag decode failed, omitting thumbnail")
		return nil
	}

	thumb := image.NewRGBA(image.Rect(0, 0, flagThumbWidth, flagThumbHeight))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), decoded, decoded.Bounds(), draw.Over, nil)
	return thumb
}

// topByEstimatedGDP picks the n countries with the highest non-nil
// estimated GDP, descending.
func topByEstimatedGDP(countries []models.Country, n int) []models.Country {
	qualified := make([]models.Country, 0, len(countries))
	for _, country := range countries {
		if country.EstimatedGDP != nil {
			qualified = append(qualified, country)
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return *qualified[i].EstimatedGDP > *qualified[j].EstimatedGDP
	})

	if len(qualified) > n {
		qualified = qualified[:n]
	}
	return qualified
}

// formatThousands renders a float with two decimals and comma-grouped
// integer digits, e.g. 1234567.891 -> "1,234,567.89".
func formatThousands(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', 2, 64)

	parts := strings.SplitN(formatted, ".", 2)
	integer := parts[0]

	sign := ""
	if strings.HasPrefix(integer, "-") {
		sign = "-"
		integer = integer[1:]
	}

	var grouped strings.Builder
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	return sign + grouped.String() + "." + parts[1]
}

func loadFontFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
