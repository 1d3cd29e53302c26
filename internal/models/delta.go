package models

// DeltaRecord is the change of one metric between a baseline and the current value.
type DeltaRecord struct {
	Current       int64   `json:"current"`
	Previous      int64   `json:"previous"`
	AbsoluteDelta int64   `json:"delta"`
	ElapsedHours  float64 `json:"elapsedHours"`
	Rate          float64 `json:"rate"`
	PercentGrowth float64 `json:"growthRate"`
	IsNew         bool    `json:"isNew,omitempty"`
}

type ChannelDelta struct {
	ID          string      `json:"id"`
	Views       DeltaRecord `json:"views"`
	Subscribers DeltaRecord `json:"subscribers"`
	Videos      DeltaRecord `json:"videos"`
}

type VideoDelta struct {
	ID             string      `json:"videoId"`
	Views          DeltaRecord `json:"views"`
	ViewsPerHour   float64     `json:"viewsPerHour"`
	EngagementRate float64     `json:"engagementRate"`
}
