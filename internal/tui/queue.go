package tui

// lineQueue hands submitted lines from input handling to the frame loop.
type lineQueue struct {
	ch chan string
}

func newLineQueue(size int) *lineQueue {
	if size < 1 {
		size = 16
	}
	return &lineQueue{ch: make(chan string, size)}
}

// Push reports false when the queue is full and the line was dropped.
func (q *lineQueue) Push(line string) bool {
	if q == nil {
		return false
	}
	select {
	case q.ch <- line:
		return true
	default:
		return false
	}
}

func (q *lineQueue) Pop() (string, bool) {
	if q == nil {
		return "", false
	}
	select {
	case line := <-q.ch:
		return line, true
	default:
		return "", false
	}
}
