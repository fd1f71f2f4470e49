package retry

import (
	"context"
	"math"
	"time"
)

// Class - класс ошибки, определяющий задержку перед следующей попыткой
type Class int

const (
	// ClassOther - прочие ошибки, повтор через половину базовой задержки
	ClassOther Class = iota

	// ClassRateLimit - upstream ограничил частоту, экспоненциальный backoff
	ClassRateLimit

	// ClassTimeout - запрос не успел, короткая фиксированная задержка
	ClassTimeout
)

// Classifier относит ошибку к классу для выбора задержки
type Classifier func(error) Class

// Policy - переиспользуемая политика повторов.
// Параметризуется на каждом call site, чтобы backoff был тестируем отдельно.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Classify    Classifier

	// sleep подменяется в тестах
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy создает политику с безопасными значениями по умолчанию
func NewPolicy(maxAttempts int, baseDelay time.Duration, multiplier float64, classify Classifier) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if multiplier <= 0 {
		multiplier = 2.0
	}
	if classify == nil {
		classify = func(error) Class { return ClassOther }
	}
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Multiplier:  multiplier,
		Classify:    classify,
		sleep:       sleepCtx,
	}
}

// Do выполняет fn до MaxAttempts раз. Между попытками ждёт задержку,
// зависящую от класса ошибки. Исчерпав попытки, возвращает последнюю ошибку.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		if err := p.sleep(ctx, p.DelayFor(lastErr, attempt)); err != nil {
			return err
		}
	}

	return lastErr
}

// DelayFor возвращает задержку перед попыткой attempt+1 после ошибки err
func (p Policy) DelayFor(err error, attempt int) time.Duration {
	switch p.Classify(err) {
	case ClassRateLimit:
		return time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt)))
	case ClassTimeout:
		return p.BaseDelay
	default:
		return p.BaseDelay / 2
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
