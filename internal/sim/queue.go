package sim

// QueueEntry 是佇列中的一項計時工作。
type QueueEntry struct {
	ID               int     `json:"id"`
	Label            string  `json:"label"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}

// WorkQueue 是循序的城務佇列：同一時間只有隊首在倒數，
// 完成即出列。
type WorkQueue struct {
	entries []QueueEntry
	nextID  int
}

func NewWorkQueue() *WorkQueue {
	return &WorkQueue{nextID: 1}
}

// Enqueue 排入一項工作並回傳其 id。
func (q *WorkQueue) Enqueue(label string, durationSeconds float64) int {
	id := q.nextID
	q.nextID++
	q.entries = append(q.entries, QueueEntry{
		ID:               id,
		Label:            label,
		RemainingSeconds: durationSeconds,
	})
	return id
}

// Update 把經過的秒數餵給隊首；多出的時間滾動給下一項。
// 回傳本次完成的工作。
func (q *WorkQueue) Update(dtSeconds float64) []QueueEntry {
	var done []QueueEntry
	for dtSeconds > 0 && len(q.entries) > 0 {
		head := &q.entries[0]
		if head.RemainingSeconds > dtSeconds {
			head.RemainingSeconds -= dtSeconds
			break
		}
		dtSeconds -= head.RemainingSeconds
		head.RemainingSeconds = 0
		done = append(done, *head)
		q.entries = q.entries[1:]
	}
	return done
}

// Cancel 移除指定工作，成功回傳 true。
func (q *WorkQueue) Cancel(id int) bool {
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries 回傳佇列複本。
func (q *WorkQueue) Entries() []QueueEntry {
	return append([]QueueEntry(nil), q.entries...)
}

// Restore 自存檔回寫佇列，nextID 取現存最大 id 續編。
func (q *WorkQueue) Restore(entries []QueueEntry) {
	q.entries = append([]QueueEntry(nil), entries...)
	q.nextID = 1
	for _, e := range q.entries {
		if e.ID >= q.nextID {
			q.nextID = e.ID + 1
		}
	}
}
