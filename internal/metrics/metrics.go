// Package metrics holds the Prometheus instruments for the media endpoints.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UploadURLsIssued prometheus.Counter
	QuotaRejections  prometheus.Counter
	MediaDeleted     prometheus.Counter
	ReorderTotal     *prometheus.CounterVec

	StorageOpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the instruments on reg instead of the default registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UploadURLsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "media_upload_urls_issued_total",
			Help: "Signed upload URL grants (draft records created)",
		}),
		QuotaRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "media_quota_rejections_total",
			Help: "Upload URL requests rejected at the quota boundary",
		}),
		MediaDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "media_deleted_total",
			Help: "Media records deleted through remove-tmp",
		}),
		ReorderTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "media_reorders_total",
			Help: "Reorder requests by outcome",
		}, []string{"outcome"}),

		StorageOpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Duration of Supabase Storage operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
