// Package classifier labels videos as short-form or long-form from their
// duration, title/description markers and thumbnail aspect ratio.
package classifier

import (
	"strings"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

type Policy struct {
	ShortMaxSeconds    int
	ExtendedMaxSeconds int
	PortraitRatio      float64
	Markers            []string
}

func DefaultPolicy() Policy {
	return Policy{
		ShortMaxSeconds:    60,
		ExtendedMaxSeconds: 90,
		PortraitRatio:      0.6,
		Markers:            []string{"shorts", "#shorts", "숏츠", "쇼츠"},
	}
}

// PolicyFromConfig fills unset values from DefaultPolicy.
func PolicyFromConfig(conf structures.ClassifierConfig) Policy {
	p := DefaultPolicy()
	if conf.ShortMaxSeconds > 0 {
		p.ShortMaxSeconds = conf.ShortMaxSeconds
	}
	if conf.ExtendedMaxSeconds > 0 {
		p.ExtendedMaxSeconds = conf.ExtendedMaxSeconds
	}
	if conf.PortraitRatio > 0 {
		p.PortraitRatio = conf.PortraitRatio
	}
	if len(conf.Markers) > 0 {
		p.Markers = conf.Markers
	}
	return p
}

// Input is the raw metadata a classification is derived from. When Duration
// is set it takes precedence over DurationSeconds.
type Input struct {
	Duration        string
	DurationSeconds int
	Title           string
	Description     string
	ThumbWidth      int
	ThumbHeight     int
}

type Classification struct {
	IsShort         bool
	DurationSeconds int
}

type ClassifierInterface interface {
	Classify(in Input) Classification
	Apply(v *models.VideoSnapshot)
}

type Classifier struct {
	policy  Policy
	markers []string
}

func NewClassifier(policy Policy) *Classifier {
	markers := make([]string, 0, len(policy.Markers))
	for _, m := range policy.Markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			markers = append(markers, m)
		}
	}
	return &Classifier{policy: policy, markers: markers}
}

func NewClassifierFromConfig(conf *structures.Config) ClassifierInterface {
	return NewClassifier(PolicyFromConfig(conf.Classifier))
}

// Classify applies the rules in order, first match wins:
//  1. 0 < duration <= ShortMaxSeconds
//  2. duration <= ExtendedMaxSeconds and a marker token in title or description
//  3. portrait thumbnail (width/height < PortraitRatio) and duration <= ExtendedMaxSeconds
//
// A zero or unparseable duration is never short.
func (c *Classifier) Classify(in Input) Classification {
	seconds := in.DurationSeconds
	if in.Duration != "" {
		parsed, err := ParseDuration(in.Duration)
		if err != nil {
			parsed = 0
		}
		seconds = parsed
	}
	if seconds < 0 {
		seconds = 0
	}

	result := Classification{DurationSeconds: seconds}
	if seconds == 0 {
		return result
	}

	switch {
	case seconds <= c.policy.ShortMaxSeconds:
		result.IsShort = true
	case seconds <= c.policy.ExtendedMaxSeconds && c.hasMarker(in.Title, in.Description):
		result.IsShort = true
	case seconds <= c.policy.ExtendedMaxSeconds && c.isPortrait(in.ThumbWidth, in.ThumbHeight):
		result.IsShort = true
	}
	return result
}

// Apply recomputes v.IsShort from the snapshot's own fields.
func (c *Classifier) Apply(v *models.VideoSnapshot) {
	if v == nil {
		return
	}
	res := c.Classify(Input{
		DurationSeconds: v.DurationSeconds,
		Title:           v.Title,
		Description:     v.Description,
		ThumbWidth:      v.ThumbWidth,
		ThumbHeight:     v.ThumbHeight,
	})
	v.DurationSeconds = res.DurationSeconds
	v.IsShort = res.IsShort
}

func (c *Classifier) hasMarker(texts ...string) bool {
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, m := range c.markers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}

func (c *Classifier) isPortrait(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	return float64(width)/float64(height) < c.policy.PortraitRatio
}
