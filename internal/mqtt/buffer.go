package mqtt

import log "github.com/sirupsen/logrus"

// queuedMsg is a serialized MQTT message held while the radio is down.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue keeps the most recent messages published while disconnected,
// so a sleep cycle does not lose telemetry. Oldest messages are dropped first.
// Not safe for concurrent use; RealPublisher holds its mutex around it.
type offlineQueue struct {
	slots   []queuedMsg
	next    int
	size    int
	dropped int // messages overwritten since the last drain
}

func newOfflineQueue(capacity int) *offlineQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &offlineQueue{slots: make([]queuedMsg, capacity)}
}

func (q *offlineQueue) push(msg queuedMsg) {
	if q.size == len(q.slots) {
		if q.dropped == 0 {
			log.WithField("capacity", len(q.slots)).Warn("mqtt: offline queue full, dropping oldest")
		}
		q.dropped++
	} else {
		q.size++
	}
	q.slots[q.next] = msg
	q.next = (q.next + 1) % len(q.slots)
}

// drain returns queued messages oldest first and empties the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if q.size == 0 {
		return nil
	}
	out := make([]queuedMsg, 0, q.size)
	start := (q.next - q.size + len(q.slots)) % len(q.slots)
	for i := 0; i < q.size; i++ {
		out = append(out, q.slots[(start+i)%len(q.slots)])
	}
	if q.dropped > 0 {
		log.WithField("dropped", q.dropped).Warn("mqtt: replaying offline queue after drops")
	}
	q.next, q.size, q.dropped = 0, 0, 0
	return out
}

func (q *offlineQueue) len() int {
	return q.size
}
