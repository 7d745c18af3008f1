package entity

import "fmt"

// VideoQuality selects the compression level for extracted frames.
type VideoQuality string

const (
	QualityHigh   VideoQuality = "high"
	QualityMedium VideoQuality = "medium"
	QualityLow    VideoQuality = "low"
)

// ParseVideoQuality validates a user-supplied quality name.
func ParseVideoQuality(s string) (VideoQuality, error) {
	switch VideoQuality(s) {
	case QualityHigh, QualityMedium, QualityLow:
		return VideoQuality(s), nil
	}
	return "", fmt.Errorf("unknown video quality %q (expected high, medium or low)", s)
}

// QScale maps the quality level to ffmpeg's -q:v scale, where lower values
// mean less compression. The mapping is strictly monotonic.
func (q VideoQuality) QScale() int {
	switch q {
	case QualityHigh:
		return 2
	case QualityLow:
		return 10
	default:
		return 5
	}
}
