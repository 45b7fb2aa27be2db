// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
)

// streamMetrics exposes decode counters on a dedicated Prometheus registry
type streamMetrics struct {
	reg *prometheus.Registry

	BytesRead      prometheus.Counter
	FramesDecoded  prometheus.Counter
	ChecksumErrors prometheus.Counter
	FramingErrors  prometheus.Counter
	Anomalies      prometheus.Counter
	ServiceTotal   *prometheus.CounterVec // labels: service
}

func newStreamMetrics() *streamMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &streamMetrics{
		reg: reg,
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ulescope_bytes_read_total",
			Help: "Total bytes consumed from the connection.",
		}),
		FramesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ulescope_frames_decoded_total",
			Help: "Total CMND frames decoded.",
		}),
		ChecksumErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ulescope_checksum_errors_total",
			Help: "Frames rejected for checksum mismatch.",
		}),
		FramingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ulescope_framing_errors_total",
			Help: "Stream resynchronizations and malformed frame headers.",
		}),
		Anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ulescope_validation_anomalies_total",
			Help: "Decoded messages flagged by validation.",
		}),
		ServiceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ulescope_messages_total",
			Help: "Decoded messages by service.",
		}, []string{"service"}),
	}
	reg.MustRegister(m.BytesRead, m.FramesDecoded, m.ChecksumErrors, m.FramingErrors, m.Anomalies, m.ServiceTotal)
	return m
}

// observe records one decode outcome
func (m *streamMetrics) observe(msg *cmnd.Message, decodeErr error, validationErrors []cmnd.ValidationError) {
	if decodeErr != nil {
		if cmnd.IsFrameError(decodeErr, cmnd.FrameErrChecksumInvalid) {
			m.ChecksumErrors.Inc()
		} else {
			m.FramingErrors.Inc()
		}
		return
	}
	if msg == nil {
		return
	}
	m.FramesDecoded.Inc()
	m.ServiceTotal.WithLabelValues(cmnd.ServiceName(msg.ServiceID())).Inc()
	if len(validationErrors) > 0 {
		m.Anomalies.Inc()
	}
}

// Serve blocks serving /metrics on addr
func (m *streamMetrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg}))
	return http.ListenAndServe(addr, mux)
}
