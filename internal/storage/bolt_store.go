package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var announcementBucket = []byte("announcements")

// A bbolt record is the expiry in unix seconds, the revision, then the digest:
//
//	[0:8] expiry  [8:12] revision  [12:] digest
const recordHeaderBytes = 12

// boltStore keeps one record per menu date in a single bucket.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	// sweepEvery bounds how often RecordAnnouncement also drops expired dates.
	sweepEvery time.Duration
	mu         sync.Mutex
	lastSweep  time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(announcementBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:         db,
		ttl:        opts.MenuTTL,
		now:        time.Now,
		sweepEvery: opts.CleanupInterval,
		lastSweep:  time.Now(),
	}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// LastAnnouncement returns the unexpired record for date. Expired or
// unreadable records read as absent and are left for the next sweep.
func (b *boltStore) LastAnnouncement(date string) (Announcement, bool, error) {
	var (
		a     Announcement
		found bool
	)
	now := b.now()
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(announcementBucket).Get([]byte(date))
		if raw == nil {
			return nil
		}
		rec, ok := decodeRecord(raw)
		if !ok || !rec.expires.After(now) {
			return nil
		}
		a, found = rec.Announcement, true
		return nil
	})
	if err != nil {
		return Announcement{}, false, fmt.Errorf("read announcement %s: %w", date, err)
	}
	return a, found, nil
}

// RecordAnnouncement stores a for date, replacing any earlier record.
func (b *boltStore) RecordAnnouncement(date string, a Announcement) error {
	now := b.now()
	rec := record{Announcement: a, expires: now.Add(b.ttl)}
	sweep := b.sweepDue(now)

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(announcementBucket)
		if sweep {
			if err := dropExpired(bucket, now); err != nil {
				return err
			}
		}
		return bucket.Put([]byte(date), rec.encode())
	})
	if err != nil {
		return fmt.Errorf("record announcement %s: %w", date, err)
	}
	return nil
}

func (b *boltStore) sweepDue(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Sub(b.lastSweep) < b.sweepEvery {
		return false
	}
	b.lastSweep = now
	return true
}

// dropExpired deletes every expired or corrupt record in bucket.
func dropExpired(bucket *bolt.Bucket, now time.Time) error {
	var stale [][]byte
	err := bucket.ForEach(func(k, v []byte) error {
		if rec, ok := decodeRecord(v); !ok || !rec.expires.After(now) {
			stale = append(stale, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := bucket.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// dates lists the stored menu dates, expired or not.
func (b *boltStore) dates() ([]string, error) {
	var out []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(announcementBucket).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

type record struct {
	Announcement
	expires time.Time
}

func (r record) encode() []byte {
	buf := make([]byte, recordHeaderBytes, recordHeaderBytes+len(r.Digest))
	binary.BigEndian.PutUint64(buf[0:8], uint64(r.expires.Unix()))
	binary.BigEndian.PutUint32(buf[8:12], uint32(r.Revision))
	return append(buf, r.Digest...)
}

func decodeRecord(raw []byte) (record, bool) {
	if len(raw) <= recordHeaderBytes {
		return record{}, false
	}
	unix := int64(binary.BigEndian.Uint64(raw[0:8]))
	if unix <= 0 {
		return record{}, false
	}
	return record{
		Announcement: Announcement{
			Digest:   string(raw[recordHeaderBytes:]),
			Revision: int(binary.BigEndian.Uint32(raw[8:12])),
		},
		expires: time.Unix(unix, 0),
	}, true
}
