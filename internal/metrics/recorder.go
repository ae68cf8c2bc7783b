package metrics

import (
	"time"

	"github.com/jgivc/pageindex/internal/entity"
)

type Recorder interface {
	IncExtractionFallback(reason string)
	ObserveBuild(result *entity.BuildResult, duration time.Duration)
	IncBuildFailure()
	Flush() error
}

type NoopRecorder struct{}

func (NoopRecorder) IncExtractionFallback(string)                    {}
func (NoopRecorder) ObserveBuild(*entity.BuildResult, time.Duration) {}
func (NoopRecorder) IncBuildFailure()                                {}
func (NoopRecorder) Flush() error                                    { return nil }
