package service

import (
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/connect360/tagdrop/mq"
	"github.com/connect360/tagdrop/ratelimit"
	"github.com/connect360/tagdrop/store"
)

type Service struct {
	Store   store.TagdropStore
	Limiter ratelimit.Limiter
	MQ      mq.MessageQueue
	Tokens  *DropTokenCodec

	// scanLimiter throttles the scan endpoint process-wide. Scans are not
	// part of the drop fixed-window scheme; a token bucket is fine here.
	scanLimiter *rate.Limiter

	jitterMin time.Duration
	jitterMax time.Duration
}

// Scan resolution ceiling, process-wide.
const (
	scanRatePerSecond = 50
	scanBurst         = 100
)

func NewService(
	tagdropStore store.TagdropStore,
	limiter ratelimit.Limiter,
	queue mq.MessageQueue,
	tokens *DropTokenCodec,
	jitterMin time.Duration,
	jitterMax time.Duration,
) *Service {
	return &Service{
		Store:       tagdropStore,
		Limiter:     limiter,
		MQ:          queue,
		Tokens:      tokens,
		scanLimiter: rate.NewLimiter(rate.Limit(scanRatePerSecond), scanBurst),
		jitterMin:   jitterMin,
		jitterMax:   jitterMax,
	}
}

// ResponseJitter returns a random delay applied to every drop response,
// whichever gate produced it. Uniform delay shape is what keeps rejected,
// invalid and empty-inbox responses indistinguishable by timing.
func (s *Service) ResponseJitter() time.Duration {
	span := s.jitterMax - s.jitterMin
	if span <= 0 {
		return s.jitterMin
	}
	return s.jitterMin + time.Duration(rand.Int64N(int64(span)))
}
