package ble

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxRetryAttempts = 5

// retry is only used while establishing the connection; command traffic is never retried
func retry(logger *zap.Logger, method string, fn func() error) error {
	err := errors.New("not error")
	attempts := 0
	for err != nil && attempts < maxRetryAttempts {
		if attempts > 0 {
			logger.Warn("retrying", zap.String("method", method), zap.Int("attempt", attempts), zap.Error(err))
		}
		attempts++
		err = fn()
	}
	if err != nil {
		return errors.Wrap(err, method+" exceeded attempts")
	}
	return nil
}
