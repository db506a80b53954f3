package notification

import (
	"time"

	"freshmart/internal/infra/mailer"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 送信失敗を数える
type FailureCounter interface {
	NotificationFailed()
}

type noopCounter struct{}

func (noopCounter) NotificationFailed() {}

// メール送信をgoroutine poolで非同期に流す。
// 失敗はログと件数だけ残し、呼び出し元には返さない。
type Dispatcher struct {
	pool     *ants.Pool
	mailer   mailer.Mailer
	failures FailureCounter
	log      *zap.Logger
}

func NewDispatcher(workers int, m mailer.Mailer, failures FailureCounter, log *zap.Logger) (*Dispatcher, error) {
	if failures == nil {
		failures = noopCounter{}
	}
	if log == nil {
		log = zap.L()
	}
	log = log.Named("notification")

	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			failures.NotificationFailed()
			log.Error("notification worker panic", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create notification pool")
	}

	return &Dispatcher{pool: pool, mailer: m, failures: failures, log: log}, nil
}

// 送信をキューに入れてすぐ戻る
func (d *Dispatcher) Dispatch(msg mailer.Message) {
	if msg.To == "" {
		return
	}
	err := d.pool.Submit(func() {
		if err := d.mailer.Send(msg); err != nil {
			d.failures.NotificationFailed()
			d.log.Warn("email send failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	})
	if err != nil {
		// pool満杯 or 停止済み
		d.failures.NotificationFailed()
		d.log.Warn("email dropped",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}

// 実行中の送信をtimeoutまで待ってから止める
func (d *Dispatcher) Release(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
