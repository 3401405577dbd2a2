// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package instrument exports cipher activity as prometheus metrics.
package instrument

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/op/go-logging.v1"
)

const namespace = "feistel"

// Directions label values.
const (
	Encrypt = "encrypt"
	Decrypt = "decrypt"
)

var (
	blocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Number of 64-bit blocks run through the Feistel network",
		},
		[]string{"direction"},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Number of messages encrypted or decrypted",
		},
		[]string{"direction"},
	)
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Number of rejected encrypt or decrypt requests",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(blocks)
	prometheus.MustRegister(messages)
	prometheus.MustRegister(failures)
}

// BlocksProcessed adds n blocks to the counter for direction.
func BlocksProcessed(direction string, n int) {
	blocks.With(prometheus.Labels{"direction": direction}).Add(float64(n))
}

// MessageProcessed increments the message counter for direction.
func MessageProcessed(direction string) {
	messages.With(prometheus.Labels{"direction": direction}).Inc()
}

// Failure increments the failure counter for reason.
func Failure(reason string) {
	failures.With(prometheus.Labels{"reason": reason}).Inc()
}

// StartListener serves the registered metrics on addr under /metrics.  The
// returned server is already listening; shut it down with Close.
func StartListener(addr string, log *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Noticef("Serving metrics on http://%s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics listener failed: %v", err)
		}
	}()
	return srv
}
