package backend

import "github.com/gogpu/gg/text"

// Option configures a backend at creation.
type Option func(*options)

type options struct {
	face         text.Face
	labelPadding float64
	queueSize    int
}

func defaultOptions() options {
	return options{
		labelPadding: 2,
		queueSize:    16,
	}
}

// WithFace sets the label font face. Without a face, labels are drawn as
// boxes only.
func WithFace(face text.Face) Option {
	return func(o *options) {
		o.face = face
	}
}

// WithLabelPadding sets the horizontal padding between a label box and
// its text, in CSS pixels.
func WithLabelPadding(px float64) Option {
	return func(o *options) {
		if px >= 0 {
			o.labelPadding = px
		}
	}
}

// WithQueueSize sets the Offloaded command channel capacity.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}
