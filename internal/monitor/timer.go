package monitor

import (
	"fmt"
	"time"
)

// Timed runs fn and records its elapsed time in seconds as a metric under
// name with the given tags. The duration is recorded on every exit path. If
// fn returns an error, an error metric is additionally recorded and logged
// with the operation context; a panic is recorded the same way and then
// re-raised.
func (m *Monitor) Timed(name string, tags map[string]string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		m.RecordMetric(name, time.Since(start).Seconds(), tags)

		ctx := map[string]any{"metric_name": name, "tags": tags}
		if v := recover(); v != nil {
			m.RecordError("panic", fmt.Sprint(v), ctx)
			panic(v)
		}
		if err != nil {
			m.RecordError("operation", err.Error(), ctx)
		}
	}()
	return fn()
}
