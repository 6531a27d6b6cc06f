package logger

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// sink receives lines at or above min.
type sink struct {
	w   *bufio.Writer
	min slog.Level
}

type line struct {
	level slog.Level
	data  []byte
}

// asyncWriter fans log lines out to its sinks from a single goroutine.
// Write blocks only when the queue is full.
type asyncWriter struct {
	queue   chan line
	flushes chan chan error
	done    chan struct{}
	close   sync.Once

	mu    sync.Mutex
	sinks []sink
	err   error
}

func newAsyncWriter(sinks []sink) *asyncWriter {
	w := &asyncWriter{
		queue:   make(chan line, 256),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
		sinks:   sinks,
	}
	go w.run()
	return w
}

// bufferedSink wraps out for newAsyncWriter.
func bufferedSink(out io.Writer, min slog.Level) sink {
	return sink{w: bufio.NewWriterSize(out, 64*1024), min: min}
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case l, ok := <-w.queue:
			if !ok {
				w.flush()
				return
			}
			w.fail(w.write(l))
		case ack := <-w.flushes:
			ack <- w.flush()
		}
	}
}

// Write copies p and queues it for every sink accepting level.
func (w *asyncWriter) Write(level slog.Level, p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.queue <- line{level: level, data: append([]byte(nil), p...)}
	return nil
}

// Flush waits until everything queued so far reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		return errors.Join(<-ack, w.firstErr())
	case <-w.done:
		return w.firstErr()
	}
}

// Close drains the queue. Further writes panic.
func (w *asyncWriter) Close() error {
	w.close.Do(func() { close(w.queue) })
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) write(l line) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if l.level < s.min {
			continue
		}
		if _, err := s.w.Write(l.data); err != nil {
			return err
		}
		if err := s.w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, s := range w.sinks {
		if err := s.w.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) firstErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
