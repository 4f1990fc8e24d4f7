package jobs

import (
	"fmt"
	"os"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/nats-io/nats.go"
)

// lockTTL bounds how long a dead instance can hold a job lock.
const lockTTL = 30 * time.Minute

// LockManager hands out per-job locks through a NATS KV bucket so that each
// maintenance job runs on exactly one instance per tick.
type LockManager struct {
	kv         nats.KeyValue
	instanceID string
}

// NewLockManager creates or binds the job_locks bucket. The instance identity
// is hostname plus pid, which survives for the lifetime of the process.
func NewLockManager(js nats.JetStreamContext) (*LockManager, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream context is nil")
	}

	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	kv, err := js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      "job_locks",
		Description: "Per-job locks for the maintenance scheduler",
		TTL:         lockTTL,
	})
	if err != nil {
		// Another instance created the bucket first
		kv, err = js.KeyValue("job_locks")
		if err != nil {
			return nil, fmt.Errorf("bind job_locks bucket: %w", err)
		}
	}

	log.Info("Job lock manager ready, instance %s", instanceID)
	return &LockManager{kv: kv, instanceID: instanceID}, nil
}

// TryLock attempts to take the lock for a job. Creation is atomic in the KV
// bucket; when the key already exists the lock only counts as held if this
// instance owns it, in which case the TTL is refreshed.
func (lm *LockManager) TryLock(jobName string) bool {
	if _, err := lm.kv.Create(jobName, []byte(lm.instanceID)); err == nil {
		return true
	}

	entry, err := lm.kv.Get(jobName)
	if err != nil || string(entry.Value()) != lm.instanceID {
		return false
	}
	_, err = lm.kv.Put(jobName, []byte(lm.instanceID))
	return err == nil
}

// Unlock releases the lock if this instance holds it. A lock held by another
// instance is left alone.
func (lm *LockManager) Unlock(jobName string) {
	entry, err := lm.kv.Get(jobName)
	if err != nil || string(entry.Value()) != lm.instanceID {
		return
	}
	if err := lm.kv.Delete(jobName); err != nil {
		log.Warning("Failed to release lock for job %s: %v", jobName, err)
	}
}

// GetInstanceID returns this process's lock identity.
func (lm *LockManager) GetInstanceID() string {
	return lm.instanceID
}
