package core

type UpstreamConfig interface {
	GetBaseURL() string
	GetAPIKey() string
	GetModel() string
}

type MemoryPolicy interface {
	GetSummaryTrigger() int
	GetSummaryCooldown() int
	GetRecentTail() int
	GetMaxWindow() int
	GetMaxMessageChars() int
}

type RetryPolicy interface {
	GetMaxRetries() int
	GetMinResponseWords() int
	GetTemperatureStep() float64
}
