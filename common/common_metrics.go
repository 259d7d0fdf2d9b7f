package common

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hacash/node/metrics_config"
)

var (
	messageMetrics *prometheus.CounterVec
	// PeerMetrics is set by the p2p peer set, label "numPeers".
	PeerMetrics *prometheus.GaugeVec
)

func init() {
	messageMetrics = metrics_config.NewCounterVec("P2PFrames", "Frames and frame bytes read from and written to peer streams")
	PeerMetrics = metrics_config.NewGaugeVec("P2PPeers", "Peers connected to this node")
}

// countMessage counts one frame of size bytes in direction "sent" or
// "received".
func countMessage(direction string, size int) {
	if messageMetrics == nil {
		return
	}
	messageMetrics.WithLabelValues(direction).Inc()
	messageMetrics.WithLabelValues(direction + "_bytes").Add(float64(size))
}
