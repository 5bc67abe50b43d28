package persist

import "github.com/okian/plaudit/pkg/logger"

// LoaderOption applies a configuration option to a Loader.
type LoaderOption func(*Loader)

// WithWorkerCount sets how many restore workers replay records.
func WithWorkerCount(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workerCount = n
		}
	}
}

// WithQueueCapacity bounds the reader-to-worker queue.
func WithQueueCapacity(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.queueCapacity = n
		}
	}
}

// WithLoaderLogger sets a custom logger for the loader.
func WithLoaderLogger(lg logger.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WriterOption applies a configuration option to a Writer.
type WriterOption func(*Writer)

// WithWriterLogger sets a custom logger for the writer.
func WithWriterLogger(lg logger.Logger) WriterOption {
	return func(w *Writer) {
		if lg != nil {
			w.logger = lg
		}
	}
}
