package asset

import (
	exif "github.com/dsoprea/go-exif/v3"
)

// exifTags are the EXIF tags kept in a probe summary.
var exifTags = map[string]struct{}{
	"Make":             {},
	"Model":            {},
	"Software":         {},
	"Artist":           {},
	"Copyright":        {},
	"DateTime":         {},
	"DateTimeOriginal": {},
	"Orientation":      {},
	"GPSLatitude":      {},
	"GPSLatitudeRef":   {},
	"GPSLongitude":     {},
	"GPSLongitudeRef":  {},
}

// exifSummary extracts a small set of EXIF tags from image data.
// It returns nil when the image carries no EXIF block or none of the tags.
func exifSummary(data []byte) map[string]string {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil || raw == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil
	}

	summary := make(map[string]string)
	for _, entry := range entries {
		if _, ok := exifTags[entry.TagName]; !ok {
			continue
		}
		if entry.Formatted == "" {
			continue
		}
		if _, dup := summary[entry.TagName]; dup {
			continue
		}
		summary[entry.TagName] = entry.Formatted
	}
	if len(summary) == 0 {
		return nil
	}
	return summary
}
