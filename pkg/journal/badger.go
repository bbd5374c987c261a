package journal

import (
	"time"

	"github.com/dgraph-io/badger"
	"go.uber.org/zap"

	"github.com/korthochain/srpverifier/pkg/logger"
)

const keyPrefix = "salt/"

// Badger persists claims so reuse is detected across restarts.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

func OpenBadger(path string, ttl time.Duration) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{logger.SugarLogger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	logger.Info("salt journal opened", zap.String("path", path))
	return &Badger{db: db, ttl: ttl}, nil
}

func (b *Badger) Claim(identity, salt string) (bool, error) {
	k := []byte(keyPrefix + key(identity, salt))
	claimed := false

	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(k)
		switch err {
		case nil:
			return nil
		case badger.ErrKeyNotFound:
		default:
			return err
		}

		e := badger.NewEntry(k, []byte{1})
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		if err := txn.SetEntry(e); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger's internal messages into zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
