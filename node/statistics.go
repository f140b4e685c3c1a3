package node

import (
	"encoding/json"
	"sync"
	"time"
)

// StatisticsSample is one throughput data point: one processed
// message's frame index, byte length, and processing time.
type StatisticsSample struct {
	FrameIndex     int           `json:"frame_index"`
	ByteLength     int           `json:"byte_length"`
	ProcessingTime time.Duration `json:"-"`
}

// MarshalJSON reports ProcessingTime in seconds as
// "processing_time_seconds".
func (s StatisticsSample) MarshalJSON() ([]byte, error) {
	type alias struct {
		FrameIndex             int     `json:"frame_index"`
		ByteLength             int     `json:"byte_length"`
		ProcessingTimeSeconds  float64 `json:"processing_time_seconds"`
	}
	return json.Marshal(alias{
		FrameIndex:            s.FrameIndex,
		ByteLength:            s.ByteLength,
		ProcessingTimeSeconds: s.ProcessingTime.Seconds(),
	})
}

// Aggregate summarizes a StatisticsRing on demand.
type Aggregate struct {
	TotalFrames      int     `json:"total_frames"`
	TotalBytes       int     `json:"total_bytes"`
	TotalTimeSeconds float64 `json:"total_time_seconds"`
	FramesPerSecond  float64 `json:"frames_per_second"`
	BytesPerSecond   float64 `json:"bytes_per_second"`
}

// StatisticsRing is the bounded, insertion-ordered FIFO of the most
// recent throughput samples (default capacity 100). Appends
// replace the oldest sample once the ring is full; reads see a
// consistent snapshot because samples are immutable and the ring is
// only ever mutated under its own lock.
type StatisticsRing struct {
	mu       sync.Mutex
	capacity int
	samples  []StatisticsSample
}

// DefaultStatisticsCapacity is the ring capacity used when none is
// configured.
const DefaultStatisticsCapacity = 100

// NewStatisticsRing returns a ring with the given capacity. A
// non-positive capacity falls back to DefaultStatisticsCapacity.
func NewStatisticsRing(capacity int) *StatisticsRing {
	if capacity <= 0 {
		capacity = DefaultStatisticsCapacity
	}
	return &StatisticsRing{capacity: capacity}
}

// Append records sample as the newest entry, dropping the oldest one
// if the ring is already at capacity.
func (r *StatisticsRing) Append(sample StatisticsSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, sample)
	if len(r.samples) > r.capacity {
		r.samples = r.samples[len(r.samples)-r.capacity:]
	}
}

// Raw returns a copy of the ring's current contents, oldest first.
func (r *StatisticsRing) Raw() []StatisticsSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]StatisticsSample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Aggregate computes totals and rates over the ring's current
// contents. An empty ring returns a zero Aggregate.
func (r *StatisticsRing) Aggregate() Aggregate {
	samples := r.Raw()
	if len(samples) == 0 {
		return Aggregate{}
	}

	var totalTime float64
	var totalBytes int

	for _, s := range samples {
		totalTime += s.ProcessingTime.Seconds()
		totalBytes += s.ByteLength
	}

	agg := Aggregate{
		TotalFrames:      len(samples),
		TotalBytes:       totalBytes,
		TotalTimeSeconds: totalTime,
	}

	if totalTime > 0 {
		agg.FramesPerSecond = float64(agg.TotalFrames) / totalTime
		agg.BytesPerSecond = float64(totalBytes) / totalTime
	}

	return agg
}
