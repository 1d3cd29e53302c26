package classifier

import (
	"testing"

	"ytstat/internal/models"
	"ytstat/internal/structures"

	"github.com/stretchr/testify/assert"
)

func newDefault() *Classifier {
	return NewClassifier(DefaultPolicy())
}

func TestClassify_UpToSixtySecondsIsShort(t *testing.T) {
	c := newDefault()
	for d := 1; d <= 60; d++ {
		res := c.Classify(Input{DurationSeconds: d})
		assert.True(t, res.IsShort, "duration %d", d)
		assert.Equal(t, d, res.DurationSeconds)
	}
}

func TestClassify_ExtendedRangeWithoutMarkerIsLong(t *testing.T) {
	c := newDefault()
	for d := 61; d <= 90; d++ {
		res := c.Classify(Input{DurationSeconds: d, Title: "국회 본회의 현장", ThumbWidth: 1280, ThumbHeight: 720})
		assert.False(t, res.IsShort, "duration %d", d)
	}
}

func TestClassify_MarkerTokens(t *testing.T) {
	c := newDefault()
	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"hashtag in title", "오늘의 정치 #Shorts", "", true},
		{"plain token", "SHORTS 모음", "", true},
		{"korean token 숏츠", "대정부 질문 숏츠", "", true},
		{"korean token 쇼츠", "쇼츠로 보는 뉴스", "", true},
		{"marker in description", "국정감사", "더 보기 #shorts", true},
		{"no marker", "국정감사 하이라이트", "전체 영상", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(Input{DurationSeconds: 75, Title: tt.title, Description: tt.description})
			assert.Equal(t, tt.want, res.IsShort)
		})
	}
}

func TestClassify_PortraitThumbnail(t *testing.T) {
	c := newDefault()
	assert.True(t, c.Classify(Input{DurationSeconds: 85, ThumbWidth: 720, ThumbHeight: 1280}).IsShort)
	assert.False(t, c.Classify(Input{DurationSeconds: 95, ThumbWidth: 720, ThumbHeight: 1280}).IsShort)
	assert.False(t, c.Classify(Input{DurationSeconds: 85, ThumbWidth: 720, ThumbHeight: 0}).IsShort)
}

func TestClassify_LongVideoWithMarkerIsLong(t *testing.T) {
	c := newDefault()
	assert.False(t, c.Classify(Input{DurationSeconds: 240, Title: "#shorts"}).IsShort)
}

func TestClassify_ZeroDurationIsNotShort(t *testing.T) {
	c := newDefault()
	res := c.Classify(Input{DurationSeconds: 0, Title: "#shorts", ThumbWidth: 720, ThumbHeight: 1280})
	assert.False(t, res.IsShort)
	assert.Equal(t, 0, res.DurationSeconds)
}

func TestClassify_UnparseableDuration(t *testing.T) {
	c := newDefault()
	assert.NotPanics(t, func() {
		res := c.Classify(Input{Duration: "garbage", Title: "#shorts"})
		assert.False(t, res.IsShort)
		assert.Equal(t, 0, res.DurationSeconds)
	})
}

func TestClassify_DurationStringTakesPrecedence(t *testing.T) {
	c := newDefault()
	res := c.Classify(Input{Duration: "PT45S", DurationSeconds: 600})
	assert.True(t, res.IsShort)
	assert.Equal(t, 45, res.DurationSeconds)
}

func TestApply_RecomputesStoredFlag(t *testing.T) {
	c := newDefault()
	v := &models.VideoSnapshot{ID: "v1", DurationSeconds: 600, IsShort: true}
	c.Apply(v)
	assert.False(t, v.IsShort)

	v.DurationSeconds = 30
	c.Apply(v)
	assert.True(t, v.IsShort)
}

func TestPolicyFromConfig_Overrides(t *testing.T) {
	p := PolicyFromConfig(structures.ClassifierConfig{ShortMaxSeconds: 45, Markers: []string{"#쇼츠"}})
	assert.Equal(t, 45, p.ShortMaxSeconds)
	assert.Equal(t, 90, p.ExtendedMaxSeconds)
	assert.Equal(t, 0.6, p.PortraitRatio)
	assert.Equal(t, []string{"#쇼츠"}, p.Markers)

	c := NewClassifier(p)
	assert.False(t, c.Classify(Input{DurationSeconds: 50}).IsShort)
}
